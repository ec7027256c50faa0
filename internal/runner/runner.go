// Package runner implements the extract, drop and import operations on top of
// the catalog inspector, the archive store and the fixed-point resolver.
package runner

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgtk/pgtk/cmd/util"
	"github.com/pgtk/pgtk/internal/archive"
	"github.com/pgtk/pgtk/internal/config"
	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/resolve"
	"github.com/pgtk/pgtk/internal/view"
)

// Source enumerates raw catalog rows. An empty objectRef means every view.
type Source interface {
	Rows(ctx context.Context, objectRef string) ([]view.Row, error)
}

// Runner carries what every operation needs for one invocation
type Runner struct {
	cfg    config.Config
	db     util.Execer
	source Source
	store  *archive.Store
}

// New creates a runner. source may be nil for operations that only replay the archive.
func New(cfg config.Config, db util.Execer, source Source) *Runner {
	return &Runner{
		cfg:    cfg,
		db:     db,
		source: source,
		store:  archive.NewStore(cfg.ArchiveDir, cfg.DDLDir()),
	}
}

// Store returns the archive the runner reads and writes
func (r *Runner) Store() *archive.Store {
	return r.store
}

// reportDivergence logs one line per object a run could not resolve, with the
// SQLSTATE of its last failure so dependency errors stand out from others
func reportDivergence(op string, err error) {
	var div *resolve.DivergenceError[*view.Record]
	if !errors.As(err, &div) {
		return
	}
	log := logger.Get()
	for _, u := range div.Unresolved {
		log.Error(op+" unresolved",
			"view", u.Item.QualifiedName(),
			"sqlstate", sqlState(u.LastErr),
			"error", u.LastErr,
		)
	}
}

// sqlState returns the SQLSTATE of a server error, or "" for anything else
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
