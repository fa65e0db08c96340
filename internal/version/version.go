// Package version carries build metadata for the analyzer binaries.
package version

import "fmt"

// Injected at build time:
//
//	go build -ldflags "-X drape-meter/internal/version.Version=v1.0.0 ..."
var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// GitCommit is the short commit hash of the build.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// String returns the one-line form printed by the -version flag.
func String() string {
	return fmt.Sprintf("drape-meter %s (%s, built %s)", Version, GitCommit, BuildTime)
}
