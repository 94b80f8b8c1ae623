package version

// Version is the current version of the sandbox-risk toolkit.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/sandbox-risk/internal/version.Version=1.2.3"
// The value "main" indicates a development build.
var Version = "v0.4.0"

// APIVersion is the sandbox backend API version this client speaks.
var APIVersion = "1.0.0"

// GetVersion returns the current version of the toolkit.
func GetVersion() string {
	return Version
}
