// Package database opens the gorm handle shared by every repository.
package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/axellelanca/clickfix/internal/config"
	"github.com/axellelanca/clickfix/internal/logger"
	"github.com/axellelanca/clickfix/internal/models"
)

// Open connects to the configured store.
// SQLite is the default; an in-memory SQLite database is pinned to a single
// connection so every query sees the same data.
func Open(cfg config.Database) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         newGormLogger(logger.Get()),
		TranslateError: true,
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Name), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Name, err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
		}
		if strings.Contains(cfg.Name, ":memory:") {
			sqlDB.SetMaxOpenConns(1)
		} else if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
			logger.Warnf("Could not enable WAL mode: %v", err)
		}
		return db, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("database.dsn is required for the postgres driver")
		}
		db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// newGormLogger routes gorm's warnings through w. A missing row is a normal lookup
// outcome here, so it is not logged.
func newGormLogger(w gormlogger.Writer) gormlogger.Interface {
	return gormlogger.New(w, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate creates or updates the campaigns, targets and events tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Campaign{}, &models.Target{}, &models.Event{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Errorf("failed to get underlying SQL database: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Errorf("failed to close database: %v", err)
	}
}
