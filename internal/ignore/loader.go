// Package ignore loads the optional .pgtkignore file listing views to leave
// out of an extraction.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// FileName is the default name of the ignore file
	FileName = ".pgtkignore"
)

// Config holds the ignore patterns
type Config struct {
	Views []string
}

// tomlConfig represents the TOML structure of the ignore file
type tomlConfig struct {
	Views patternConfig `toml:"views,omitempty"`
}

type patternConfig struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// Load reads the ignore file at path.
// Returns nil if the file doesn't exist (ignore functionality is optional)
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var tc tomlConfig
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, err
	}

	return &Config{Views: tc.Views.Patterns}, nil
}

// ShouldIgnoreView checks the view name and its qualified "schema.view" form
// against the patterns. Patterns support * wildcards and ! negation; a
// matching negation always wins.
func (c *Config) ShouldIgnoreView(schema, name string) bool {
	if c == nil || len(c.Views) == 0 {
		return false
	}
	candidates := []string{name, schema + "." + name}

	matched := false
	for _, pattern := range c.Views {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchAny(pattern, candidates) {
			matched = true
			break
		}
	}

	for _, pattern := range c.Views {
		if !strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchAny(pattern[1:], candidates) {
			return false
		}
	}

	return matched
}

func matchAny(pattern string, names []string) bool {
	for _, name := range names {
		matched, err := filepath.Match(pattern, name)
		if err != nil {
			// invalid glob, fall back to literal comparison
			matched = pattern == name
		}
		if matched {
			return true
		}
	}
	return false
}
