package types //nolint:revive // types is a valid package name

import (
	"regexp"
	"testing"
)

func TestVersionIsValidSemver(t *testing.T) {
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	if !semverRegex.MatchString(Version) {
		t.Errorf("Version %q is not a valid semver", Version)
	}
}
