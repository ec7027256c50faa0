package util

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/pgtk/pgtk/internal/logger"
)

type recordingExecer struct {
	stmts []string
	err   error
}

func (r *recordingExecer) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	r.stmts = append(r.stmts, query)
	if r.err != nil {
		return nil, r.err
	}
	return driver.RowsAffected(0), nil
}

func TestExecContextWithLogging(t *testing.T) {
	defer logger.SetGlobal(nil, false)

	var buf bytes.Buffer
	logger.Setup(&buf, true)

	db := &recordingExecer{err: errors.New("boom")}
	_, err := ExecContextWithLogging(context.Background(), db, "DROP VIEW x", "drop x")
	if err == nil {
		t.Fatal("expected error to be passed through")
	}
	if len(db.stmts) != 1 || db.stmts[0] != "DROP VIEW x" {
		t.Errorf("unexpected statements: %v", db.stmts)
	}

	out := buf.String()
	for _, want := range []string{"Executing SQL", "SQL execution failed", "description=\"drop x\"", "elapsed=", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output:\n%s", want, out)
		}
	}
}

func TestExecContextWithLoggingQuietAtInfo(t *testing.T) {
	defer logger.SetGlobal(nil, false)

	var buf bytes.Buffer
	logger.Setup(&buf, false)

	db := &recordingExecer{}
	if _, err := ExecContextWithLogging(context.Background(), db, "CREATE VIEW x AS SELECT 1", "create x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got:\n%s", buf.String())
	}
}
