package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/TouchController/E1epack/internal/version.Version=...
	Commit  = "unknown" // -X github.com/TouchController/E1epack/internal/version.Commit=...
	Date    = "unknown" // -X github.com/TouchController/E1epack/internal/version.Date=...
)

// String returns the build information on one line
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
