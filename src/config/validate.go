package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Lockdown ──────────────────────────────────────────────────────────

	seen := make(map[string]bool)
	for i, key := range cfg.Lockdown.DependencyKeys {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Sprintf("lockdown.dependency_keys[%d]: must not be empty", i))
			continue
		}
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("lockdown.dependency_keys[%d]: duplicate key %q", i, key))
		}
		seen[key] = true
	}
	if cfg.Lockdown.DependencyKeys != nil && len(cfg.Lockdown.DependencyKeys) == 0 {
		warnings = append(warnings, "lockdown.dependency_keys: empty list disables every section")
	}

	if len(cfg.Lockdown.Files) == 0 {
		errs = append(errs, "lockdown.files: at least one pattern is required")
	}
	for i, pattern := range cfg.Lockdown.Files {
		errs = append(errs, validatePattern(fmt.Sprintf("lockdown.files[%d]", i), pattern)...)
	}

	// ── Lint ──────────────────────────────────────────────────────────────

	switch cfg.Lint.Level {
	case LevelChanged, LevelFull, "":
	default:
		errs = append(errs, fmt.Sprintf("lint.level: unknown level %q (supported: changed, full)", cfg.Lint.Level))
	}

	for i, pattern := range cfg.Lint.Exclude {
		errs = append(errs, validatePattern(fmt.Sprintf("lint.exclude[%d]", i), pattern)...)
	}
	for name, mc := range cfg.Lint.Modules {
		for i, pattern := range mc.Exclude {
			errs = append(errs, validatePattern(fmt.Sprintf("lint.modules.%s.exclude[%d]", name, i), pattern)...)
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

func validatePattern(path, pattern string) []string {
	if strings.TrimSpace(pattern) == "" {
		return []string{fmt.Sprintf("%s: must not be empty", path)}
	}
	// ** is handled by the lint glob matcher; check the remaining syntax.
	if _, err := filepath.Match(strings.ReplaceAll(pattern, "**", "*"), ""); err != nil {
		return []string{fmt.Sprintf("%s: invalid pattern %q: %v", path, pattern, err)}
	}
	return nil
}
