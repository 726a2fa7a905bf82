// Package version exposes build information stamped at link time.
package version

import "fmt"

// Set via -ldflags "-X github.com/vitalscope/vitalscope/internal/version.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Info returns a human-readable version line.
func Info() string {
	return fmt.Sprintf("vitalscope %s (commit %s, built %s)", Version, Commit, Date)
}

// Map returns version fields for JSON responses.
func Map() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"date":    Date,
	}
}
