// Package version reports which pgtk build is running. The release number is
// embedded from VERSION; commit and date are stamped by the release build:
//
//	go build -ldflags "-X github.com/pgtk/pgtk/internal/version.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/pgtk/pgtk/internal/version.BuildDate=$(date -u +%Y-%m-%d)"
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// Stamped via -ldflags -X; left as "unknown" for go run and go install
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	Platform  string
}

// Version returns the release number, e.g. "0.1.0"
func Version() string {
	return strings.TrimSpace(versionFile)
}

// Get collects the build information of the running binary
func Get() Info {
	return Info{
		Version:   Version(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders "v0.1.0@abc1234 linux/amd64 2025-01-01", the banner printed
// by `pgtk version` and the root help
func (i Info) String() string {
	return fmt.Sprintf("v%s@%s %s %s", i.Version, i.GitCommit, i.Platform, i.BuildDate)
}
