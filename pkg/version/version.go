// Package version carries build metadata stamped in through -ldflags.
package version

import "fmt"

// Overridden at build time, e.g.
// -ldflags "-X github.com/sameehj/warden/pkg/version.Version=v0.2.0".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String renders the metadata as a single summary line.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
