// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/nickclare/texman/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/nickclare/texman/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/nickclare/texman/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information on one line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}

// Template returns the --version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
