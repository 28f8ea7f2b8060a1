package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Register the pgx driver with database/sql under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/learnpath/internal/config"
	"github.com/phrazzld/learnpath/internal/platform/logger"
	"github.com/phrazzld/learnpath/internal/redact"
)

// DriverName is the database/sql driver used for PostgreSQL connections.
const DriverName = "pgx"

const pingTimeout = 5 * time.Second

// Open establishes a connection pool configured from cfg and verifies it with
// a ping. The caller owns the returned *sql.DB.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	log := logger.FromContext(ctx).With(slog.String("component", "database"))

	db, err := sql.Open(DriverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %s", redact.Error(err))
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		log.Error("database ping failed",
			slog.String("url", redact.DatabaseURL(cfg.URL)),
			slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to ping database: %s", redact.Error(err))
	}

	log.Info("database connection established",
		slog.String("url", redact.DatabaseURL(cfg.URL)),
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns))
	return db, nil
}
