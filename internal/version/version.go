// Package version carries build metadata. Release builds set it with
// -ldflags "-X git.home.luguber.info/inful/bookbuilder/internal/version.Version=v0.3.0".
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String formats the version line printed by `bookbuilder --version`.
func String() string {
	if GitCommit == "unknown" && BuildTime == "unknown" {
		return "bookbuilder " + Version
	}
	return fmt.Sprintf("bookbuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
