// Package results persists benchmark runs and their per-task results to
// PostgreSQL so strategy timings can be compared across runs.
package results

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/config"
	"github.com/glmaljkovich/heic-to-jpeg-middleware/internal/observability/types"
)

// Connect opens a pooled PostgreSQL connection and verifies it with a ping.
func Connect(cfg config.DatabaseConfig, logger types.Logger) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info(context.Background(), "Connected to results database", types.Fields{
		"host":     cfg.Host,
		"database": cfg.Database,
	})

	return db, nil
}
