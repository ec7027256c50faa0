package version

import (
	"regexp"
	"runtime"
	"testing"
)

func TestVersionIsSemver(t *testing.T) {
	if !regexp.MustCompile(`^\d+\.\d+\.\d+$`).MatchString(Version()) {
		t.Errorf("Version() = %q, want MAJOR.MINOR.PATCH", Version())
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "2025-01-01", Platform: "linux/amd64"}
	if got := info.String(); got != "v1.2.3@abc1234 linux/amd64 2025-01-01" {
		t.Errorf("String() = %q", got)
	}
}

func TestGetUsesStampedValues(t *testing.T) {
	oldCommit, oldDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = oldCommit, oldDate })
	GitCommit, BuildDate = "deadbee", "2025-06-30"

	info := Get()
	if info.GitCommit != "deadbee" || info.BuildDate != "2025-06-30" {
		t.Errorf("Get() = %+v, want stamped commit and date", info)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform = %q", info.Platform)
	}
}
