package util

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pgtk/pgtk/internal/config"
	"github.com/pgtk/pgtk/internal/logger"
)

// ErrConnectivity marks an unreachable, misconfigured or unauthorized database
var ErrConnectivity = errors.New("database connection failed")

// Connect parses the configured URI, opens a connection and verifies it with a ping.
// The caller owns the returned handle and must close it.
func Connect(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	log := logger.Get()

	connConfig, err := pgx.ParseConfig(cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid database URI: %w", ErrConnectivity, err)
	}
	if cfg.ApplicationName != "" {
		connConfig.RuntimeParams["application_name"] = cfg.ApplicationName
	}

	log.Debug("Attempting database connection",
		"host", connConfig.Host,
		"port", connConfig.Port,
		"database", connConfig.Database,
		"user", connConfig.User,
		"application_name", cfg.ApplicationName,
	)

	db := stdlib.OpenDB(*connConfig)
	// one connection for the whole invocation
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		log.Debug("Database ping failed", "error", err)
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	log.Debug("Database connection established successfully")
	return db, nil
}
