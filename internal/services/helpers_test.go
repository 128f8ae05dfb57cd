package services

import (
	"context"
	"testing"

	"recipebox/internal/config"
	"recipebox/internal/db"
	"recipebox/internal/logging"
	"recipebox/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    ":memory:",
		GinMode:        "test",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return conn
}

func mustRegister(t *testing.T, s *AuthService, username, email string) *models.User {
	t.Helper()
	u, err := s.Register(context.Background(), username, email, "password")
	require.NoError(t, err)
	return u
}

func newServices(t *testing.T) (*AuthService, *RecipeService, *SearchService) {
	t.Helper()
	conn := newTestDB(t)
	log := logging.Discard()
	return NewAuthService(conn, log), NewRecipeService(conn, log), NewSearchService(conn)
}
