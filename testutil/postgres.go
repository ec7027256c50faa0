// Package testutil provides shared test utilities for pgtk
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var suppressedLogger = log.New(io.Discard, "", 0)

// postgresVersion reads PGTK_POSTGRES_VERSION, defaulting to "17".
func postgresVersion() string {
	if version := os.Getenv("PGTK_POSTGRES_VERSION"); version != "" {
		return version
	}
	return "17"
}

// Container holds a running PostgreSQL container and an open handle to it
type Container struct {
	Container testcontainers.Container
	DSN       string
	Conn      *sql.DB
}

// SetupPostgresContainer starts a disposable PostgreSQL instance. Tests calling it
// are skipped in -short mode. The container is terminated via t.Cleanup.
func SetupPostgresContainer(ctx context.Context, t *testing.T) *Container {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:"+postgresVersion()+"-alpine",
		postgres.WithDatabase("pgtk"),
		postgres.WithUsername("pgtk"),
		postgres.WithPassword("pgtk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(suppressedLogger),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	c := &Container{Container: pgContainer, DSN: dsn, Conn: conn}
	t.Cleanup(func() { c.Terminate(context.Background(), t) })
	return c
}

// Terminate closes the connection and removes the container
func (c *Container) Terminate(ctx context.Context, t *testing.T) {
	c.Conn.Close()
	if err := c.Container.Terminate(ctx); err != nil {
		t.Logf("Failed to terminate container: %v", err)
	}
}

// MustExec runs each statement on the container connection, failing the test on error
func (c *Container) MustExec(ctx context.Context, t *testing.T, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := c.Conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// RelationExists reports whether schema.name is present in pg_class
func (c *Container) RelationExists(ctx context.Context, t *testing.T, schema, name string) bool {
	t.Helper()
	var exists bool
	err := c.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM pg_class cl
			JOIN pg_namespace ns ON ns.oid = cl.relnamespace
			WHERE ns.nspname = $1 AND cl.relname = $2
		)`, schema, name).Scan(&exists)
	if err != nil {
		t.Fatalf("query pg_class: %v", err)
	}
	return exists
}
