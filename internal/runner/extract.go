package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgtk/pgtk/internal/ignore"
	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/view"
)

var errNoSource = errors.New("no catalog source configured")

// Extract queries the catalog for objectRef's transitive dependents (or every
// view when objectRef is empty) and replaces the archive with the result
func (r *Runner) Extract(ctx context.Context, objectRef string) ([]*view.Record, error) {
	log := logger.Get()

	records, err := r.collect(ctx, objectRef)
	if err != nil {
		return nil, err
	}

	if err := r.store.Reset(); err != nil {
		return nil, err
	}
	if err := r.store.Save(records); err != nil {
		return nil, err
	}

	if len(records) == 0 {
		log.Info("Nothing to extract", "object_ref", objectRef)
		return records, nil
	}
	for _, rec := range records {
		log.Info("Extracted", "view", rec.QualifiedName(), "kind", rec.Kind.String(), "level", rec.Level, "indexes", len(rec.Indexes))
	}
	return records, nil
}

// collect fetches and aggregates catalog rows, dropping ignored views
func (r *Runner) collect(ctx context.Context, objectRef string) ([]*view.Record, error) {
	if r.source == nil {
		return nil, errNoSource
	}

	rows, err := r.source.Rows(ctx, objectRef)
	if err != nil {
		return nil, err
	}
	records, err := view.Aggregate(rows)
	if err != nil {
		return nil, err
	}

	ignoreConfig, err := ignore.Load(r.cfg.IgnoreFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore file %s: %w", r.cfg.IgnoreFile, err)
	}
	if ignoreConfig == nil {
		return records, nil
	}

	kept := records[:0]
	for _, rec := range records {
		if ignoreConfig.ShouldIgnoreView(rec.Schema, rec.Name) {
			logger.Get().Debug("Ignoring view", "view", rec.QualifiedName())
			continue
		}
		kept = append(kept, rec)
	}
	return kept, nil
}
