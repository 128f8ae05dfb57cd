package services

import (
	"context"
	"strings"

	"recipebox/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SearchService finds recipes by substring.
type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns recipes whose title or ingredients contain query, ignoring
// case as the database's LOWER folds it. A blank query matches nothing, not
// everything.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0)

	query = strings.TrimSpace(query)
	if query == "" {
		return recipes, nil
	}

	// Both sides go through SQL LOWER; sqlite folds only ASCII, so folding
	// the pattern in Go would miss non-ASCII capitals.
	pattern := "%" + likeEscaper.Replace(query) + "%"
	err := s.db.WithContext(ctx).Preload("Author").
		Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\' OR LOWER(ingredients) LIKE LOWER(?) ESCAPE '\'`, pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, errors.Wrap(err, "search recipes")
	}
	return recipes, nil
}
