// Package misc keeps build time information about the program.
package misc

// Set with -ldflags "-X hbc/misc.version=... -X hbc/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "hbc"

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns git hash of the build.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name used for logs, temporary files and reports.
func GetAppName() string {
	return appName
}
