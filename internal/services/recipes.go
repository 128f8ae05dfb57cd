package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"recipebox/internal/logging"
	"recipebox/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxTitleLen = 100

var errNoAuthor = errors.New("recipe author is required")

// RecipeInput is the user-supplied part of a recipe.
type RecipeInput struct {
	Title        string
	Description  string
	Ingredients  string
	Instructions string
}

// RecipeService owns recipes and the comments and ratings attached to them.
// Recipes, comments and ratings are create-and-read only.
type RecipeService struct {
	db  *gorm.DB
	log logging.Logger
}

func NewRecipeService(db *gorm.DB, log logging.Logger) *RecipeService {
	return &RecipeService{db: db, log: log}
}

// CreateRecipe stores a recipe written by author. Title, ingredients and
// instructions are required; the creation time is assigned here.
func (s *RecipeService) CreateRecipe(ctx context.Context, author *models.User, in RecipeInput) (*models.Recipe, error) {
	if author == nil || author.ID == 0 {
		return nil, errNoAuthor
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Ingredients = strings.TrimSpace(in.Ingredients)
	in.Instructions = strings.TrimSpace(in.Instructions)

	verr := &ValidationError{}
	if in.Title == "" {
		verr.add("title", "This field is required.")
	} else if utf8.RuneCountInString(in.Title) > maxTitleLen {
		verr.add("title", "Title must be at most 100 characters.")
	}
	if in.Ingredients == "" {
		verr.add("ingredients", "This field is required.")
	}
	if in.Instructions == "" {
		verr.add("instructions", "This field is required.")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Title:        in.Title,
		Description:  in.Description,
		Ingredients:  in.Ingredients,
		Instructions: in.Instructions,
		AuthorID:     author.ID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&recipe).Error; err != nil {
		return nil, errors.Wrap(err, "create recipe")
	}
	recipe.Author = *author

	s.log.Info(ctx, "recipe created", "recipe_id", recipe.ID, "author_id", author.ID)
	return &recipe, nil
}

// ListRecipes returns every recipe, newest first.
func (s *RecipeService) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0)
	err := s.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC, id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, errors.Wrap(err, "list recipes")
	}
	return recipes, nil
}

// LatestRecipes returns at most limit recipes, newest first.
func (s *RecipeService) LatestRecipes(ctx context.Context, limit int) ([]models.Recipe, error) {
	recipes := make([]models.Recipe, 0, limit)
	err := s.db.WithContext(ctx).Preload("Author").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, errors.Wrap(err, "list latest recipes")
	}
	return recipes, nil
}

// GetRecipe returns ErrNotFound when no recipe has the id.
func (s *RecipeService) GetRecipe(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Preload("Author").First(&recipe, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get recipe")
	}
	return &recipe, nil
}

func (s *RecipeService) recipeExists(ctx context.Context, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check recipe")
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment attaches a comment to an existing recipe.
func (s *RecipeService) AddComment(ctx context.Context, recipeID uint, author *models.User, body string) (*models.Comment, error) {
	if author == nil || author.ID == 0 {
		return nil, errNoAuthor
	}
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &ValidationError{Fields: map[string]string{"comment": "This field is required."}}
	}

	comment := models.Comment{
		Body:     body,
		RecipeID: recipeID,
		AuthorID: author.ID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&comment).Error; err != nil {
		return nil, errors.Wrap(err, "create comment")
	}
	comment.Author = *author

	s.log.Info(ctx, "comment added", "comment_id", comment.ID, "recipe_id", recipeID, "author_id", author.ID)
	return &comment, nil
}

// AddRating attaches a rating between models.MinRating and models.MaxRating
// to an existing recipe. Repeat ratings by the same user are kept.
func (s *RecipeService) AddRating(ctx context.Context, recipeID uint, author *models.User, value int) (*models.Rating, error) {
	if author == nil || author.ID == 0 {
		return nil, errNoAuthor
	}
	if err := s.recipeExists(ctx, recipeID); err != nil {
		return nil, err
	}

	if value < models.MinRating || value > models.MaxRating {
		return nil, &ValidationError{Fields: map[string]string{"rating": "Rating must be between 1 and 5."}}
	}

	rating := models.Rating{
		Value:    value,
		RecipeID: recipeID,
		AuthorID: author.ID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&rating).Error; err != nil {
		return nil, errors.Wrap(err, "create rating")
	}
	rating.Author = *author

	s.log.Info(ctx, "rating added", "rating_id", rating.ID, "recipe_id", recipeID, "author_id", author.ID)
	return &rating, nil
}

// ListComments returns the recipe's comments, oldest first. An unknown recipe
// simply has none.
func (s *RecipeService) ListComments(ctx context.Context, recipeID uint) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	err := s.db.WithContext(ctx).Preload("Author").
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, errors.Wrap(err, "list comments")
	}
	return comments, nil
}

// ListRatings returns the recipe's ratings, oldest first.
func (s *RecipeService) ListRatings(ctx context.Context, recipeID uint) ([]models.Rating, error) {
	ratings := make([]models.Rating, 0)
	err := s.db.WithContext(ctx).Preload("Author").
		Where("recipe_id = ?", recipeID).
		Order("created_at ASC, id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, errors.Wrap(err, "list ratings")
	}
	return ratings, nil
}
