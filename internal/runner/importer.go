package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/pgtk/pgtk/cmd/util"
	"github.com/pgtk/pgtk/internal/archive"
	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/resolve"
	"github.com/pgtk/pgtk/internal/view"
)

// ErrInvalidDefinition marks an archived statement that does not parse
var ErrInvalidDefinition = errors.New("invalid definition")

const noDataClause = " WITH NO DATA;"

// ImportOptions controls an import run
type ImportOptions struct {
	// WithNoData creates materialized views without populating them.
	WithNoData bool
}

// ImportResult reports a converged import run
type ImportResult struct {
	Imported []*view.Record
	Sweeps   int
}

// WithNoData rewrites a materialized view definition so it is created empty.
// The trailing terminator is replaced by the no-data clause plus terminator.
func WithNoData(definition string) string {
	stmt := strings.TrimRight(definition, " \t\r\n")
	stmt = strings.TrimSuffix(stmt, ";")
	stmt = strings.TrimRight(stmt, " \t\r\n")
	return stmt + noDataClause
}

// CreateStatement returns the statement that recreates a record
func CreateStatement(rec *view.Record, withNoData bool) string {
	if withNoData && rec.IsMaterialized() {
		return WithNoData(rec.Definition)
	}
	return rec.Definition
}

// Import replays the archive against the database, deepest level first,
// retrying definitions that fail until a sweep makes no progress. Index
// failures are fatal.
func (r *Runner) Import(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	log := logger.Get()
	log.Info("Importing archive", "dir", r.store.Dir(), "with_no_data", opts.WithNoData)

	records, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	archive.SortByLevelDesc(records)

	if len(records) == 0 {
		log.Info("Nothing to import!")
		return &ImportResult{}, nil
	}

	if err := validateDefinitions(records, opts.WithNoData); err != nil {
		return nil, err
	}

	res, err := resolve.Resolve(ctx, records, func(ctx context.Context, rec *view.Record) error {
		name := rec.QualifiedName()
		stmt := CreateStatement(rec, opts.WithNoData)
		if _, err := util.ExecContextWithLogging(ctx, r.db, stmt, "create "+name); err != nil {
			log.Debug("Import deferred", "view", name, "sqlstate", sqlState(err))
			return err
		}
		log.Info("Imported", "view", name)

		for _, idx := range rec.Indexes {
			if _, err := util.ExecContextWithLogging(ctx, r.db, idx.Definition, "create index "+idx.Name); err != nil {
				return resolve.Abort(fmt.Errorf("failed to create index %s: %w", idx.Name, err))
			}
			log.Info("Imported index", "view", name, "index", idx.Name)
		}
		return nil
	})
	if err != nil {
		reportDivergence("import", err)
		return nil, err
	}

	return &ImportResult{Imported: res.Applied, Sweeps: res.Sweeps}, nil
}

// validateDefinitions parses every statement up front so a syntax error is
// reported as such instead of surfacing as a dependency divergence
func validateDefinitions(records []*view.Record, withNoData bool) error {
	for _, rec := range records {
		if _, err := pg_query.Parse(CreateStatement(rec, withNoData)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, rec.QualifiedName(), err)
		}
		for _, idx := range rec.Indexes {
			if _, err := pg_query.Parse(idx.Definition); err != nil {
				return fmt.Errorf("%w: index %s on %s: %w", ErrInvalidDefinition, idx.Name, rec.QualifiedName(), err)
			}
		}
	}
	return nil
}
