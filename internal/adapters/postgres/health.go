package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/jsamuelsen/quotes-service/internal/ports"
)

// HealthCheckName is the key of the database entry in readiness responses.
const HealthCheckName = "postgres"

// HealthChecker reports whether the pool can reach the database.
type HealthChecker struct {
	db *gorm.DB
}

var _ ports.HealthChecker = (*HealthChecker)(nil)

// NewHealthChecker creates a checker that pings through db's pool.
func NewHealthChecker(db *gorm.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

func (h *HealthChecker) Name() string {
	return HealthCheckName
}

// Check pings the database, honouring ctx's deadline.
func (h *HealthChecker) Check(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return fmt.Errorf("accessing connection pool: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	return nil
}
