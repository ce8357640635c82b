package lint

import (
	"path/filepath"
	"strings"
)

// MatchGlob matches a glob pattern supporting ** against a forward-slash path.
// Exported so modules share the engine's glob semantics.
func MatchGlob(pattern, path string) bool { return matchGlob(pattern, path) }

// MatchPathOrBase matches patterns containing "/" or "**" against the full
// path and all other patterns against the base name only.
func MatchPathOrBase(pattern, path string) bool {
	norm := normalizeSlashPath(path)
	return matchExcludePattern(pattern, norm, filepath.Base(norm))
}

// matchGlob extends filepath.Match with "**" (zero or more path segments).
func matchGlob(pattern, path string) bool {
	if !strings.Contains(pattern, "**") {
		matched, _ := filepath.Match(pattern, path)
		return matched
	}

	idx := strings.Index(pattern, "**")
	prefix := strings.TrimRight(pattern[:idx], "/")
	suffix := strings.TrimLeft(pattern[idx+2:], "/")

	if prefix != "" {
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return false
		}
		path = strings.TrimLeft(strings.TrimPrefix(path, prefix), "/")
	}

	if suffix == "" {
		return true
	}

	// Try the suffix against every tail: "a/b/c", "b/c", "c".
	parts := strings.Split(path, "/")
	for i := range parts {
		if matchGlob(suffix, strings.Join(parts[i:], "/")) {
			return true
		}
	}
	return false
}

// normalizeSlashPath converts a path to forward slashes and strips leading "./".
func normalizeSlashPath(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}

func matchExcludePattern(pattern, normPath, baseName string) bool {
	pattern = filepath.ToSlash(pattern)
	if strings.Contains(pattern, "/") || strings.Contains(pattern, "**") {
		return matchGlob(pattern, normPath)
	}
	return matchGlob(pattern, baseName)
}

func matchAny(patterns []string, path string) bool {
	if len(patterns) == 0 {
		return false
	}
	norm := normalizeSlashPath(path)
	base := filepath.Base(norm)
	for _, p := range patterns {
		if matchExcludePattern(p, norm, base) {
			return true
		}
	}
	return false
}
