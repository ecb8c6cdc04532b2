// Package version exposes build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/MeKo-Tech/barscan/internal/version.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date. Values left at their
// defaults fall back to the VCS stamp of `go build`/`go install`.
func Info() (string, string, string) {
	v, commit, date := Version, GitCommit, BuildDate
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return v, commit, date
	}
	if v == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		v = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value[:min(len(s.Value), 12)]
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return v, commit, date
}

// String formats the build metadata for --version and /health.
func String() string {
	v, commit, date := Info()
	return fmt.Sprintf("barscan %s (commit: %s, built: %s)", v, commit, date)
}
