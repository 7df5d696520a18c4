package manifest

import (
	"regexp"
	"slices"
	"strings"
)

// versionPattern is the accepted version shape: three numeric components
// and an optional prerelease introduced by "-". Everything after that "-"
// is the prerelease, build metadata included.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(?:-(.*))?$`)

// ExperimentalPrefix marks prerelease channels that may use any name.
const ExperimentalPrefix = "experimental-"

// prereleaseTags are the fixed prerelease channels.
var prereleaseTags = []string{"alpha", "beta", "rc"}

// Version is a package version as the publish rules read it.
type Version struct {
	Raw        string
	Prerelease string // text after the first "-", empty for a stable version
}

// ParseVersion checks version against the accepted shape and splits off
// the prerelease. Numeric components are not range checked.
func ParseVersion(version string) (Version, error) {
	m := versionPattern.FindStringSubmatchIndex(version)
	if m == nil {
		return Version{}, &ValidationError{
			Rule:    RuleVersionFormat,
			Field:   "version",
			Value:   version,
			Message: "version does not match MAJOR.MINOR.PATCH[-PRERELEASE]",
		}
	}

	v := Version{Raw: version}
	if m[2] >= 0 {
		v.Prerelease = version[m[2]:m[3]]
		if v.Prerelease == "" {
			return Version{}, &ValidationError{
				Rule:    RuleVersionFormat,
				Field:   "version",
				Value:   version,
				Message: "version has an empty prerelease segment",
			}
		}
	}
	return v, nil
}

// PrereleaseTag returns the prerelease up to its first ".", or "" for a
// stable version.
func PrereleaseTag(v Version) string {
	tag, _, _ := strings.Cut(v.Prerelease, ".")
	return tag
}

// IsAllowedTag reports whether tag names a prerelease channel that may be
// published.
func IsAllowedTag(tag string) bool {
	return strings.HasPrefix(tag, ExperimentalPrefix) || slices.Contains(prereleaseTags, tag)
}
