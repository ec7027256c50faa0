package runner_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pgtk/pgtk/internal/catalog"
	"github.com/pgtk/pgtk/internal/config"
	"github.com/pgtk/pgtk/internal/runner"
	"github.com/pgtk/pgtk/internal/view"
	"github.com/pgtk/pgtk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDropImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	pg := testutil.SetupPostgresContainer(ctx, t)

	pg.MustExec(ctx, t,
		`CREATE TABLE public.base (id int PRIMARY KEY, amount numeric)`,
		`INSERT INTO public.base VALUES (1, 10), (2, 20)`,
		`CREATE VIEW public.a AS SELECT id, amount FROM public.base`,
		`CREATE VIEW public.b AS SELECT id, amount * 2 AS doubled FROM public.a`,
		`CREATE VIEW public.c AS SELECT id, doubled FROM public.b WHERE doubled > 0`,
		`CREATE MATERIALIZED VIEW public.totals AS SELECT sum(doubled) AS total FROM public.c`,
		`CREATE INDEX totals_total_idx ON public.totals (total)`,
	)

	root := t.TempDir()
	cfg := config.Config{
		DatabaseURI: pg.DSN,
		ArchiveDir:  filepath.Join(root, "extracted"),
		IgnoreFile:  filepath.Join(root, ".pgtkignore"),
	}
	r := runner.New(cfg, pg.Conn, catalog.NewInspector(pg.Conn))

	records, err := r.Extract(ctx, "public.base")
	require.NoError(t, err)
	require.Len(t, records, 4)

	byName := make(map[string]*view.Record)
	for _, rec := range records {
		byName[rec.Name] = rec
	}
	assert.Equal(t, int32(1), byName["a"].Level)
	assert.Equal(t, int32(3), byName["c"].Level)
	assert.Equal(t, int32(4), byName["totals"].Level)
	assert.Equal(t, view.KindMaterializedView, byName["totals"].Kind)
	require.Len(t, byName["totals"].Indexes, 1)
	assert.Equal(t, "totals_total_idx", byName["totals"].Indexes[0].Name)

	dropped, err := r.Drop(ctx, runner.DropOptions{ObjectRef: "public.base", Backup: true, Reorder: true})
	require.NoError(t, err)
	require.Len(t, dropped.Dropped, 4)
	assert.Equal(t, "totals", dropped.Dropped[0].Name)
	assert.Equal(t, "a", dropped.Dropped[3].Name)
	for _, name := range []string{"a", "b", "c", "totals"} {
		assert.False(t, pg.RelationExists(ctx, t, "public", name), "%s should be dropped", name)
	}

	imported, err := r.Import(ctx, runner.ImportOptions{WithNoData: true})
	require.NoError(t, err)
	assert.Equal(t, 1, imported.Sweeps)
	for _, name := range []string{"a", "b", "c", "totals", "totals_total_idx"} {
		assert.True(t, pg.RelationExists(ctx, t, "public", name), "%s should be recreated", name)
	}

	var populated bool
	require.NoError(t, pg.Conn.QueryRowContext(ctx,
		`SELECT ispopulated FROM pg_matviews WHERE schemaname = 'public' AND matviewname = 'totals'`).Scan(&populated))
	assert.False(t, populated)
}

func TestExtractAllViews(t *testing.T) {
	ctx := context.Background()
	pg := testutil.SetupPostgresContainer(ctx, t)

	pg.MustExec(ctx, t,
		`CREATE SCHEMA "Reporting"`,
		`CREATE TABLE public.t (x int)`,
		`CREATE VIEW "Reporting"."Mixed Case" AS SELECT x FROM public.t`,
	)

	root := t.TempDir()
	cfg := config.Config{ArchiveDir: filepath.Join(root, "extracted"), IgnoreFile: filepath.Join(root, ".pgtkignore")}
	r := runner.New(cfg, pg.Conn, catalog.NewInspector(pg.Conn))

	records, err := r.Extract(ctx, "")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Reporting", records[0].Schema)
	assert.Equal(t, int32(1), records[0].Level)
	assert.Contains(t, records[0].Definition, `CREATE VIEW "Reporting"."Mixed Case" AS`)

	_, err = r.Drop(ctx, runner.DropOptions{})
	require.NoError(t, err)
	assert.False(t, pg.RelationExists(ctx, t, "Reporting", "Mixed Case"))
}

func TestExtractUnknownObjectRef(t *testing.T) {
	ctx := context.Background()
	pg := testutil.SetupPostgresContainer(ctx, t)

	root := t.TempDir()
	cfg := config.Config{ArchiveDir: filepath.Join(root, "extracted"), IgnoreFile: filepath.Join(root, ".pgtkignore")}
	r := runner.New(cfg, pg.Conn, catalog.NewInspector(pg.Conn))

	_, err := r.Extract(ctx, "public.does_not_exist")
	require.ErrorIs(t, err, catalog.ErrQuery)
}
