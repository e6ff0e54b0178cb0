// SPDX-License-Identifier: MPL-2.0

// Package semver provides parsing and comparison of semantic version strings
// for manifest versions and contract compatibility checks.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version represents a parsed semantic version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Build      string
	Original   string
}

// versionRegex matches semantic version strings. Minor and patch components
// are optional and treated as 0 when absent.
var versionRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z\-\.]+))?(?:\+([0-9A-Za-z\-\.]+))?$`)

// Parse parses a version string into a Version struct.
func Parse(s string) (*Version, error) {
	matches := versionRegex.FindStringSubmatch(s)
	if matches == nil {
		return nil, fmt.Errorf("invalid version format: %s", s)
	}

	v := &Version{Original: s}

	var err error
	v.Major, err = strconv.Atoi(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %w", err)
	}

	if matches[2] != "" {
		v.Minor, err = strconv.Atoi(matches[2])
		if err != nil {
			return nil, fmt.Errorf("invalid minor version: %w", err)
		}
	}

	if matches[3] != "" {
		v.Patch, err = strconv.Atoi(matches[3])
		if err != nil {
			return nil, fmt.Errorf("invalid patch version: %w", err)
		}
	}

	v.Prerelease = matches[4]
	v.Build = matches[5]

	return v, nil
}

// IsValid reports whether s is a parseable semantic version.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// String returns the version as a string.
func (v *Version) String() string {
	return v.Original
}

// CompareRelease compares only the release components (major, minor, patch).
// Prerelease and build metadata are ignored; missing components were already
// normalized to 0 by Parse. Returns -1 if v < other, 0 if equal, 1 if v > other.
func (v *Version) CompareRelease(other *Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}

	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}

	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}

	return 0
}

// Compare compares two versions with full semver precedence: release
// components first, then prerelease (a prerelease sorts below its release).
func (v *Version) Compare(other *Version) int {
	if c := v.CompareRelease(other); c != 0 {
		return c
	}

	// Prerelease versions have lower precedence
	if v.Prerelease == "" && other.Prerelease != "" {
		return 1
	}
	if v.Prerelease != "" && other.Prerelease == "" {
		return -1
	}
	if v.Prerelease != other.Prerelease {
		if v.Prerelease < other.Prerelease {
			return -1
		}
		return 1
	}

	return 0
}

// AtLeast reports whether v satisfies the given minimum version, comparing
// release components only. Prerelease and build metadata are not considered;
// this is a documented limitation of contract compatibility checks.
func (v *Version) AtLeast(minimum *Version) bool {
	return v.CompareRelease(minimum) >= 0
}
