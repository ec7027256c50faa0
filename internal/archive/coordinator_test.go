package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/view"
	"github.com/stretchr/testify/require"
)

func TestBackupCopiesArchiveVerbatim(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save([]*view.Record{
		{Schema: "public", Name: "a", Level: 1, Kind: view.KindView, Definition: "CREATE VIEW public.a AS SELECT 1;"},
		{Schema: "public", Name: "b", Level: 2, Kind: view.KindView, Definition: "CREATE VIEW public.b AS SELECT 1;"},
	}))

	backupDir := s.Dir() + "_bak"
	require.NoError(t, os.Mkdir(backupDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(backupDir, "stale.dat"), []byte("old"), 0o644))

	require.NoError(t, s.Backup(backupDir))

	require.Equal(t, listDir(t, s.Dir()), listDir(t, backupDir))
	for _, name := range listDir(t, s.Dir()) {
		orig, err := os.ReadFile(filepath.Join(s.Dir(), name))
		require.NoError(t, err)
		copied, err := os.ReadFile(filepath.Join(backupDir, name))
		require.NoError(t, err)
		require.True(t, bytes.Equal(orig, copied), "backup of %s differs", name)
	}
}

func TestReorderAssignsRealizedLevels(t *testing.T) {
	s := newTestStore(t)
	a := &view.Record{Schema: "public", Name: "a", Level: 1, Kind: view.KindView}
	b := &view.Record{Schema: "public", Name: "b", Level: 1, Kind: view.KindView}
	c := &view.Record{Schema: "public", Name: "c", Level: 1, Kind: view.KindView}
	require.NoError(t, s.Save([]*view.Record{a, b, c}))

	require.NoError(t, s.Reorder([]*view.Record{c, b, a}))

	require.Equal(t, []string{"0001-v-public-c.dat", "0002-v-public-b.dat", "0003-v-public-a.dat"}, listDir(t, s.Dir()))
	require.Equal(t, []string{"0001-v-public-c.sql", "0002-v-public-b.sql", "0003-v-public-a.sql"}, listDir(t, s.DDLDir()))

	// inputs are working copies and stay untouched
	require.Equal(t, int32(1), c.Level)

	for _, leftover := range []string{s.Dir() + tmpSuffix, s.Dir() + discardSuffix, s.DDLDir() + tmpSuffix, s.DDLDir() + discardSuffix} {
		_, err := os.Stat(leftover)
		require.True(t, os.IsNotExist(err), "expected %s to be gone", leftover)
	}

	loaded, err := s.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.Equal(t, "public.a", loaded[0].QualifiedName())
	require.Equal(t, int32(3), loaded[0].Level)
}

func TestReorderDropsRecordsNotApplied(t *testing.T) {
	s := newTestStore(t)
	a := &view.Record{Schema: "public", Name: "a", Level: 5, Kind: view.KindView}
	b := &view.Record{Schema: "public", Name: "b", Level: 5, Kind: view.KindView}
	require.NoError(t, s.Save([]*view.Record{a, b}))

	require.NoError(t, s.Reorder([]*view.Record{b}))
	require.Equal(t, []string{"0001-v-public-b.dat"}, listDir(t, s.Dir()))
}

func TestSwapDirWithoutExistingLive(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "new")
	live := filepath.Join(root, "live")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "f"), []byte("x"), 0o644))

	require.NoError(t, swapDir(src, live))
	require.Equal(t, []string{"f"}, listDir(t, live))
}

func TestSwapDirRollsBackOnFailedRename(t *testing.T) {
	root := t.TempDir()
	live := filepath.Join(root, "live")
	require.NoError(t, os.Mkdir(live, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(live, "keep"), []byte("x"), 0o644))

	err := swapDir(filepath.Join(root, "does-not-exist"), live)
	require.Error(t, err)
	require.Equal(t, []string{"keep"}, listDir(t, live))
}

func TestBackupSkipsSubdirectories(t *testing.T) {
	var buf bytes.Buffer
	logger.Setup(&buf, false)
	t.Cleanup(func() { logger.SetGlobal(nil, false) })

	s := newTestStore(t)
	require.NoError(t, s.Save([]*view.Record{
		{Schema: "public", Name: "a", Level: 1, Kind: view.KindView},
	}))
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "nested"), 0o755))

	backupDir := s.Dir() + "_bak"
	require.NoError(t, s.Backup(backupDir))

	require.Equal(t, []string{"0001-v-public-a.dat"}, listDir(t, backupDir))
	require.Contains(t, buf.String(), "files=1")
}
