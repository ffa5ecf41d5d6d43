package version

import "fmt"

// Build information injected at build time via ldflags
var (
	Version   = "dev"     // Semantic version or "dev"
	Commit    = "unknown" // Git commit hash
	GoVersion = "unknown" // Go version used
)

// Info returns the version line printed by a companion's --version flag.
func Info(name string) string {
	return fmt.Sprintf("%s %s (commit: %s, go: %s)", name, Version, Commit, GoVersion)
}
