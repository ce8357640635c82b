package lockdown

import "strings"

// rangePrefixes are leading characters that make a version a range or wildcard.
const rangePrefixes = "^<>*~"

// Suspicious reports whether version fails to pin an exact release.
//
// Ranges ("^1.0.0", "~1.0.0", ">=1.0.0", "<1.0.0"), wildcards ("*"),
// x-ranges ("1.0.x") and the empty string are suspicious. Anything else,
// including git URLs, tags, commit hashes and local paths, is accepted.
func Suspicious(version string) bool {
	if version == "" {
		return true
	}
	if strings.IndexByte(rangePrefixes, version[0]) >= 0 {
		return true
	}
	return strings.Contains(version, ".x")
}
