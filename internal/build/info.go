// Package build exposes version metadata stamped in at link time.
package build

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are set at build time via -ldflags.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

// String returns a single human-readable build info string.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, CommitSHA, BuildDate)
}

// Semver parses Version. Development builds return an error.
func Semver() (*semver.Version, error) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("version %q is not a release: %w", Version, err)
	}
	return v, nil
}

// IsRelease reports whether the binary was built from a tagged release
// rather than a local or prerelease build.
func IsRelease() bool {
	v, err := Semver()
	return err == nil && v.Prerelease() == ""
}
