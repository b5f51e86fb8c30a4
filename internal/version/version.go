package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is set via ldflags at build time: -ldflags "-X github.com/Alia5/cscan/internal/version.Version=x.y.z"
var Version = ""

// Get returns the version string that was set at build time via ldflags.
// Returns "0.0.1-dev" if Version is empty (development builds only).
func Get() (string, error) {
	if Version == "" {
		return "0.0.1-dev", nil
	}

	v := strings.TrimPrefix(Version, "v")
	base := strings.SplitN(v, "-", 2)[0]
	if strings.Count(base, ".") != 2 {
		return "", fmt.Errorf("invalid version format: %s (expected x.y.z)", Version)
	}
	return v, nil
}

// Parse extracts major, minor, patch from a version string like "1.2.3" or "1.2.3-dirty".
func Parse(version string) (major, minor, patch int) {
	version = strings.SplitN(version, "-", 2)[0]

	nums := strings.Split(version, ".")
	if len(nums) >= 1 {
		major, _ = strconv.Atoi(nums[0])
	}
	if len(nums) >= 2 {
		minor, _ = strconv.Atoi(nums[1])
	}
	if len(nums) >= 3 {
		patch, _ = strconv.Atoi(nums[2])
	}
	return
}

// MustGet is Get for callers that only stamp output; a malformed Version
// falls back to the raw ldflags value.
func MustGet() string {
	v, err := Get()
	if err != nil {
		return Version
	}
	return v
}
