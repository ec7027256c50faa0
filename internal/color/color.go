package color

import (
	"fmt"
	"os"
)

// ANSI color codes
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Bold   = "\033[1m"
)

// Color represents a colorizer that can be enabled or disabled
type Color struct {
	enabled bool
}

// New creates a new Color instance
func New(enabled bool) *Color {
	return &Color{enabled: enabled && shouldEnableColor()}
}

// shouldEnableColor determines if color should be enabled based on environment
func shouldEnableColor() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	term := os.Getenv("TERM")
	return term != "dumb" && term != ""
}

func (c *Color) wrap(code, text string) string {
	if !c.enabled {
		return text
	}
	return code + text + Reset
}

// Create colors text for recreated objects
func (c *Color) Create(text string) string { return c.wrap(Green, text) }

// Destroy colors text for dropped objects
func (c *Color) Destroy(text string) string { return c.wrap(Red, text) }

// Warn colors text yellow
func (c *Color) Warn(text string) string { return c.wrap(Yellow, text) }

// Bold makes text bold
func (c *Color) Bold(text string) string { return c.wrap(Bold, text) }

// FormatRunLine lists one resolved object with its realized position
func (c *Color) FormatRunLine(action string, position int, qualifiedName string) string {
	symbol := " "
	switch action {
	case "drop":
		symbol = c.Destroy("-")
	case "import", "create":
		symbol = c.Create("+")
	}
	return fmt.Sprintf("  %s %3d %s", symbol, position, qualifiedName)
}

// FormatRunSummary summarizes a converged run
func (c *Color) FormatRunSummary(verb string, count, sweeps int) string {
	return fmt.Sprintf("%s %s in %s.",
		c.Bold(verb),
		c.Bold(fmt.Sprintf("%d objects", count)),
		c.Warn(fmt.Sprintf("%d sweeps", sweeps)),
	)
}
