package util

import (
	"context"
	"database/sql"
	"time"

	"github.com/pgtk/pgtk/internal/logger"
)

// Execer is the subset of *sql.DB used to run DDL statements. Each call is
// committed on its own; pgtk never wraps a run in a transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ExecContextWithLogging runs one DROP or CREATE statement. The statement, the
// outcome and its duration are logged at debug level under description, which
// names the object the statement is for. A failure is returned unchanged so the
// caller can retry the object on a later sweep.
func ExecContextWithLogging(ctx context.Context, db Execer, sqlStmt string, description string) (sql.Result, error) {
	log := logger.Get().With("description", description)
	log.Debug("Executing SQL", "sql", sqlStmt)

	start := time.Now()
	result, err := db.ExecContext(ctx, sqlStmt)
	elapsed := time.Since(start)

	if err != nil {
		log.Debug("SQL execution failed", "elapsed", elapsed, "error", err)
		return nil, err
	}
	log.Debug("SQL execution succeeded", "elapsed", elapsed)
	return result, nil
}
