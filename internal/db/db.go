package db

import (
	"fmt"
	"strings"

	"recipebox/internal/config"
	"recipebox/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and creates any missing tables.
// The returned handle is the only storage context; callers pass it to the
// services that need it.
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		// Unique violations come back as gorm.ErrDuplicatedKey on every driver.
		TranslateError: true,
	}
	if cfg.GinMode == "release" || cfg.GinMode == "test" {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DatabaseDriver == config.DriverSQLite && isMemoryDSN(cfg.DatabaseDSN) {
		// Every new connection to :memory: is a fresh, empty database.
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Migrate creates the recipe tables if they are missing. There is no other
// migration mechanism.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Comment{},
		&models.Rating{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres:
		return postgres.Open(dsn), nil
	case config.DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
