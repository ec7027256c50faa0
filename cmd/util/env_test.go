package util

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/pgtk/pgtk/internal/config"
	"github.com/spf13/pflag"
)

func TestLoadConfigFlagOverridesEnvironment(t *testing.T) {
	t.Setenv(config.EnvDatabaseURI, "postgres://env@localhost/envdb")
	t.Setenv(config.EnvArchiveDir, "/tmp/archive")
	t.Setenv(config.EnvApplicationName, "pgtk-test")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := config.Config{
		DatabaseURI:     "postgres://env@localhost/envdb",
		ArchiveDir:      "/tmp/archive",
		ApplicationName: "pgtk-test",
		IgnoreFile:      ".pgtkignore",
	}
	if cfg != want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}

	cfg, err = LoadConfig("postgres://flag@localhost/flagdb")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DatabaseURI != "postgres://flag@localhost/flagdb" {
		t.Errorf("expected flag value to win, got %q", cfg.DatabaseURI)
	}
}

func TestLoadConfigBuiltInDefault(t *testing.T) {
	t.Setenv(config.EnvDatabaseURI, "")
	os.Unsetenv(config.EnvDatabaseURI)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DatabaseURI != config.DefaultDatabaseURI {
		t.Errorf("expected built-in default, got %q", cfg.DatabaseURI)
	}
}

func TestConnectionFlags(t *testing.T) {
	var dbURI, objectRef string
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddDatabaseURIFlag(fs, &dbURI)
	AddObjectRefFlag(fs, &objectRef, "object")

	if def := fs.Lookup("db_uri").DefValue; def != "" {
		t.Errorf("db_uri default = %q, want empty so LoadConfig applies the environment", def)
	}

	if err := fs.Parse([]string{"-d", "postgres://x@y/z", "--object_ref", "public.orders"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if dbURI != "postgres://x@y/z" || objectRef != "public.orders" {
		t.Errorf("unexpected flag values: %q %q", dbURI, objectRef)
	}
}

func TestConnectRejectsInvalidURI(t *testing.T) {
	_, err := Connect(context.Background(), config.Config{DatabaseURI: "postgres://user@localhost:notaport/db"})
	if !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}
}
