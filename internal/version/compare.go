package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/sandbox-risk/pkg/errors"
)

// CheckVersionCompatibility checks if the client and server API versions are compatible.
// Returns nil if compatible, an ErrCodeVersionMismatch error with details if not.
//
// Compatibility Rules:
//   - If either version is "main" (development build), compatibility check is skipped
//   - Major versions must match exactly
//   - Minor versions must match exactly
//   - Patch versions can differ (e.g., 1.2.0 is compatible with 1.2.5)
//
// Examples:
//   - Client 1.2.0, Server 1.2.0 -> OK (exact match)
//   - Client 1.2.1, Server 1.2.0 -> OK (patch differs)
//   - Client 1.3.0, Server 1.2.0 -> ERROR (minor differs)
//   - Client 2.0.0, Server 1.2.0 -> ERROR (major differs)
//   - Client main, Server 1.2.0 -> OK (dev build, skip check)
func CheckVersionCompatibility(clientVersion, serverVersion string) error {
	clientVersion = strings.TrimPrefix(clientVersion, "v")
	serverVersion = strings.TrimPrefix(serverVersion, "v")

	if clientVersion == "main" || serverVersion == "main" {
		return nil
	}

	clientSemver, err := semver.NewVersion(clientVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid client version '%s'", clientVersion)
	}

	serverSemver, err := semver.NewVersion(serverVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeVersionMismatch, err, "invalid server version '%s'", serverVersion)
	}

	if clientSemver.Major() != serverSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: client speaks %d.x.x but server is %d.x.x",
			clientSemver.Major(), serverSemver.Major())
	}

	if clientSemver.Minor() != serverSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: client speaks %d.%d.x but server is %d.%d.x",
			clientSemver.Major(), clientSemver.Minor(),
			serverSemver.Major(), serverSemver.Minor())
	}

	return nil
}
