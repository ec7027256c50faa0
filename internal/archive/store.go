// Package archive persists view records as one binary file per record, with a
// write-only directory of equivalently named .sql files for human inspection.
package archive

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pgtk/pgtk/internal/view"
)

const (
	recordExt = ".dat"
	ddlExt    = ".sql"

	maxFileName     = 255
	truncatedPrefix = 200
	digestBytes     = 8
)

// ErrDuplicateFile is returned by Save when two records would share a file
var ErrDuplicateFile = errors.New("duplicate archive file name")

// DecodeError reports an archive file that could not be read or decoded
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode archive file %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Store is an archive directory plus its DDL mirror directory
type Store struct {
	dir    string
	ddlDir string
}

// NewStore creates a store rooted at dir with the DDL mirror in ddlDir
func NewStore(dir, ddlDir string) *Store {
	return &Store{dir: dir, ddlDir: ddlDir}
}

// Dir returns the archive directory
func (s *Store) Dir() string { return s.dir }

// DDLDir returns the DDL mirror directory
func (s *Store) DDLDir() string { return s.ddlDir }

// FileName returns "{level}-{kind}-{schema}-{view}" without extension.
// The level is zero padded so listings sort by level, then kind, schema and view.
// Schema and view are escaped so the result is a single path element that
// contains no '-' of its own, which keeps distinct records on distinct files.
// Names too long for the filesystem are truncated and suffixed with a digest.
func FileName(r *view.Record) string {
	name := fmt.Sprintf("%04d-%s-%s-%s", r.Level, string(r.Kind), escapeNamePart(r.Schema), escapeNamePart(r.Name))
	if len(name)+len(recordExt) <= maxFileName {
		return name
	}
	sum := sha256.Sum256([]byte(name))
	return name[:truncatedPrefix] + "~" + hex.EncodeToString(sum[:digestBytes])
}

func escapeNamePart(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), "-", "%2D")
}

// Reset recreates both directories empty
func (s *Store) Reset() error {
	if err := RecreateDir(s.dir); err != nil {
		return err
	}
	return RecreateDir(s.ddlDir)
}

// Save writes every record and its DDL mirror file. Two records mapping to the
// same file name are rejected before anything is written.
func (s *Store) Save(records []*view.Record) error {
	seen := make(map[string]*view.Record, len(records))
	for _, r := range records {
		name := FileName(r)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrDuplicateFile, prev.QualifiedName(), r.QualifiedName(), name)
		}
		seen[name] = r
	}

	for _, r := range records {
		if err := s.write(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) write(r *view.Record) error {
	name := FileName(r)

	recordPath := filepath.Join(s.dir, name+recordExt)
	if err := atomic.WriteFile(recordPath, bytes.NewReader(Encode(r))); err != nil {
		return fmt.Errorf("failed to write record %s: %w", recordPath, err)
	}

	ddlPath := filepath.Join(s.ddlDir, name+ddlExt)
	if err := atomic.WriteFile(ddlPath, strings.NewReader(RenderDDL(r))); err != nil {
		return fmt.Errorf("failed to write DDL %s: %w", ddlPath, err)
	}

	return nil
}

// Load decodes every file in the archive directory. A single undecodable file
// fails the whole load. Records come back sorted by level descending, ties
// broken by kind, schema, then view.
func (s *Store) Load() ([]*view.Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive %s: %w", s.dir, err)
	}

	records := make([]*view.Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		rec, err := Decode(data)
		if err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
		records = append(records, rec)
	}

	SortByLevelDesc(records)
	return records, nil
}

// SortByLevelDesc orders records deepest level first; equal levels keep
// kind, schema, view ascending
func SortByLevelDesc(records []*view.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Schema != b.Schema {
			return a.Schema < b.Schema
		}
		return a.Name < b.Name
	})
}

// RenderDDL returns the human-readable mirror content for a record
func RenderDDL(r *view.Record) string {
	var b strings.Builder
	b.WriteString(r.Definition)

	if len(r.Indexes) > 0 {
		defs := make([]string, 0, len(r.Indexes))
		for _, idx := range r.Indexes {
			defs = append(defs, strings.TrimSuffix(strings.TrimSpace(idx.Definition), ";"))
		}
		b.WriteString("\n\n")
		b.WriteString(strings.Join(defs, ";\n"))
		b.WriteString(";")
	}
	b.WriteString("\n")
	return b.String()
}

// RecreateDir creates dir, deleting it first if it already exists
func RecreateDir(dir string) error {
	err := os.Mkdir(dir, 0o755)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("unable to prepare directory %s: %w", dir, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("unable to clear directory %s: %w", dir, err)
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("unable to prepare directory %s: %w", dir, err)
	}
	return nil
}
