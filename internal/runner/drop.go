package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/lib/pq"
	"github.com/pgtk/pgtk/cmd/util"
	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/resolve"
	"github.com/pgtk/pgtk/internal/view"
)

// DropOptions controls a drop run
type DropOptions struct {
	// ObjectRef selects the dependents of one object, queried live. When empty
	// every record of the existing archive is dropped.
	ObjectRef string
	// Backup snapshots the archive before it is rewritten.
	Backup bool
	// Reorder rewrites the archive with levels equal to the realized drop order.
	Reorder bool
}

// DropResult reports a converged drop run
type DropResult struct {
	// Dropped holds copies of the dropped records with Level set to their
	// 1-based realized drop position.
	Dropped []*view.Record
	Sweeps  int
}

// DropStatement returns the DROP statement for a record
func DropStatement(rec *view.Record) string {
	return fmt.Sprintf("DROP %s %s.%s", rec.Kind, pq.QuoteIdentifier(rec.Schema), pq.QuoteIdentifier(rec.Name))
}

// Drop drops the selected views in an order discovered by retrying until
// every drop succeeds
func (r *Runner) Drop(ctx context.Context, opts DropOptions) (*DropResult, error) {
	log := logger.Get()

	var (
		records []*view.Record
		err     error
	)
	if opts.ObjectRef != "" {
		// extract replaces the archive, so the snapshot has to come first
		if opts.Backup {
			if err := r.backupExisting(); err != nil {
				return nil, err
			}
		}
		// also refreshes the archive so the dropped views can be imported again
		records, err = r.Extract(ctx, opts.ObjectRef)
	} else {
		records, err = r.store.Load()
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		log.Info("Nothing to drop!")
		return &DropResult{}, nil
	}

	if opts.Backup && opts.ObjectRef == "" {
		if err := r.store.Backup(r.cfg.BackupDir()); err != nil {
			return nil, err
		}
	}

	res, err := resolve.Resolve(ctx, records, func(ctx context.Context, rec *view.Record) error {
		name := rec.QualifiedName()
		if _, err := util.ExecContextWithLogging(ctx, r.db, DropStatement(rec), "drop "+name); err != nil {
			log.Debug("Drop deferred", "view", name, "sqlstate", sqlState(err))
			return err
		}
		log.Info("Dropped", "view", name)
		return nil
	})
	if err != nil {
		reportDivergence("drop", err)
		return nil, err
	}

	result := &DropResult{Sweeps: res.Sweeps}
	for i, rec := range res.Applied {
		c := rec.Clone()
		c.Level = int32(i + 1)
		result.Dropped = append(result.Dropped, c)
	}

	if opts.Reorder {
		if err := r.store.Reorder(result.Dropped); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// backupExisting snapshots the archive if there is one yet
func (r *Runner) backupExisting() error {
	if _, err := os.Stat(r.store.Dir()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Get().Info("No archive to back up", "dir", r.store.Dir())
			return nil
		}
		return fmt.Errorf("failed to stat archive %s: %w", r.store.Dir(), err)
	}
	return r.store.Backup(r.cfg.BackupDir())
}
