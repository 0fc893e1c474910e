// Package version exposes build metadata injected at link time.
package version

// Build information, set via -ldflags "-X github.com/jekabs-s/urlookup/pkg/version.version=...".
//
//nolint:gochecknoglobals // Populated by the linker.
var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the semantic version of the binary.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// UserAgent returns the User-Agent value sent to remote registries.
func UserAgent() string {
	return "urlookup/" + version
}
