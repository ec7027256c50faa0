package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/pgtk/pgtk/internal/logger"
	"github.com/pgtk/pgtk/internal/view"
	"golang.org/x/sync/errgroup"
)

const (
	tmpSuffix     = "_tmp"
	discardSuffix = "_old"

	backupCopyLimit = 8
)

// Backup copies every file of the archive directory verbatim into dst,
// replacing any previous backup. Files are copied concurrently; nothing else
// touches either directory while this runs.
func (s *Store) Backup(dst string) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read archive %s: %w", s.dir, err)
	}
	if err := RecreateDir(dst); err != nil {
		return err
	}

	var eg errgroup.Group
	eg.SetLimit(backupCopyLimit)

	copied := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		copied++
		name := entry.Name()
		eg.Go(func() error {
			return copyFile(filepath.Join(s.dir, name), filepath.Join(dst, name))
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("failed to back up archive to %s: %w", dst, err)
	}

	logger.Get().Info("Archive backed up", "from", s.dir, "to", dst, "files", copied)
	return nil
}

// Reorder rewrites the archive so it contains exactly records, assigning each
// record's level from its position (1-based). Records are written to temporary
// sibling directories first, then swapped into place.
func (s *Store) Reorder(records []*view.Record) error {
	reordered := make([]*view.Record, len(records))
	for i, r := range records {
		c := r.Clone()
		c.Level = int32(i + 1)
		reordered[i] = c
	}

	tmp := NewStore(s.dir+tmpSuffix, s.ddlDir+tmpSuffix)
	if err := tmp.Reset(); err != nil {
		return err
	}
	if err := tmp.Save(reordered); err != nil {
		return err
	}

	if err := swapDir(tmp.dir, s.dir); err != nil {
		return err
	}
	if err := swapDir(tmp.ddlDir, s.ddlDir); err != nil {
		return err
	}

	logger.Get().Info("Archive reordered", "dir", s.dir, "records", len(reordered))
	return nil
}

// swapDir moves src into live's place. live is first renamed to a discard name
// so that a failed second rename can be rolled back; the discard copy is
// removed once src is in place.
func swapDir(src, live string) error {
	discard := live + discardSuffix
	if err := os.RemoveAll(discard); err != nil {
		return fmt.Errorf("failed to clear %s: %w", discard, err)
	}

	hadLive := true
	if err := os.Rename(live, discard); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to move %s aside: %w", live, err)
		}
		hadLive = false
	}

	if err := os.Rename(src, live); err != nil {
		if hadLive {
			if rbErr := os.Rename(discard, live); rbErr != nil {
				return fmt.Errorf("failed to replace %s: %w (rollback failed: %v)", live, err, rbErr)
			}
		}
		return fmt.Errorf("failed to replace %s: %w", live, err)
	}

	if hadLive {
		if err := os.RemoveAll(discard); err != nil {
			return fmt.Errorf("failed to remove %s: %w", discard, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return atomic.WriteFile(dst, in)
}
