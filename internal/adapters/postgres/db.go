// Package postgres persists quotes in PostgreSQL through GORM.
//
// The connection pool is created once in main with Open and injected into
// the repository. Tests substitute any other GORM dialector via
// OpenDialector.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config holds connection pool settings.
type Config struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

// Open connects to PostgreSQL and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("postgres: database URL is empty")
	}

	return OpenDialector(ctx, pgdriver.Open(cfg.URL), cfg, logger)
}

// OpenDialector opens a pool for an arbitrary GORM dialector and applies
// the pool limits from cfg.
func OpenDialector(ctx context.Context, dialector gorm.Dialector, cfg Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 NewGormLogger(logger, cfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("accessing connection pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Close releases every pooled connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}

	return sqlDB.Close()
}
