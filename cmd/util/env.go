package util

import (
	"github.com/pgtk/pgtk/internal/config"
	"github.com/pgtk/pgtk/internal/ignore"
	"github.com/spf13/pflag"
)

// AddDatabaseURIFlag registers --db_uri/-d. The flag has no default of its own;
// when it is left empty LoadConfig falls back to DEFAULT_DATABASE_URI and then
// to the built-in URI.
func AddDatabaseURIFlag(fs *pflag.FlagSet, p *string) {
	fs.StringVarP(p, "db_uri", "d", "", "Database connection URI (default: $"+config.EnvDatabaseURI+")")
}

// AddObjectRefFlag registers --object_ref/-o
func AddObjectRefFlag(fs *pflag.FlagSet, p *string, help string) {
	fs.StringVarP(p, "object_ref", "o", "", help)
}

// LoadConfig reads the environment and applies the --db_uri flag value on top
func LoadConfig(dbURIFlag string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if dbURIFlag != "" {
		cfg.DatabaseURI = dbURIFlag
	}
	cfg.IgnoreFile = ignore.FileName
	return cfg, nil
}
