// Package version parses runtime interpreter versions of the form MAJOR.MINOR.PATCH.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalid is returned for strings that are not plain MAJOR.MINOR.PATCH.
var ErrInvalid = errors.New("version must be MAJOR.MINOR.PATCH")

// Version is a parsed runtime version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse accepts exactly MAJOR.MINOR.PATCH with decimal components and no
// leading zeros, "v" prefix, prerelease or build suffix.
func Parse(s string) (Version, error) {
	canonical := "v" + s
	if strings.HasPrefix(s, "v") || !semver.IsValid(canonical) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	// IsValid also accepts "v3" and "v3.8" shorthands as well as suffixes.
	if semver.Canonical(canonical) != canonical || semver.Prerelease(canonical) != "" {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	nums := [3]int{}

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
		}

		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// IsValid reports whether s parses.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the MAJOR.MINOR.PATCH form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
func Compare(a, b Version) int {
	return semver.Compare("v"+a.String(), "v"+b.String())
}
