// Package catalog reads view definitions and their indexes from the PostgreSQL
// system catalogs.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/view"
)

// ErrQuery marks a failed catalog query, e.g. an object reference that does not resolve
var ErrQuery = errors.New("catalog query failed")

// Querier is the subset of *sql.DB the inspector needs
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Inspector enumerates raw view rows from the catalog
type Inspector struct {
	db Querier
}

// NewInspector creates a catalog inspector
func NewInspector(db Querier) *Inspector {
	return &Inspector{db: db}
}

// Rows returns the transitive dependents of objectRef, or every view and
// materialized view outside the system schemas when objectRef is empty
func (i *Inspector) Rows(ctx context.Context, objectRef string) ([]view.Row, error) {
	if objectRef == "" {
		return i.query(ctx, allViewsQuery)
	}
	return i.query(ctx, dependentsQuery, objectRef)
}

func (i *Inspector) query(ctx context.Context, query string, args ...any) ([]view.Row, error) {
	log := logger.Get()
	log.Debug("Querying catalog", "args", args)

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	var result []view.Row
	for rows.Next() {
		var (
			r         view.Row
			indexName sql.NullString
			indexDef  sql.NullString
		)
		if err := rows.Scan(&r.Schema, &r.Name, &r.Level, &r.Kind, &r.Definition, &indexName, &indexDef); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrQuery, err)
		}
		if indexName.Valid {
			name := indexName.String
			r.IndexName = &name
		}
		if indexDef.Valid {
			def := indexDef.String
			r.IndexDefinition = &def
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	log.Debug("Catalog rows fetched", "count", len(result))
	return result, nil
}
