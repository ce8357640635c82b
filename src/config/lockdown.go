package config

// LockdownConfig controls which manifests and sections are inspected.
type LockdownConfig struct {
	// DependencyKeys overrides the inspected sections. Nil means the
	// six standard package.json sections.
	DependencyKeys []string `yaml:"dependency_keys"`
	// Files are base-name globs selecting manifests during lint.
	Files []string `yaml:"files"`
}

// DefaultLockdownConfig returns production defaults.
func DefaultLockdownConfig() LockdownConfig {
	return LockdownConfig{
		Files: []string{"package.json"},
	}
}

// ModuleOptions renders the config as lint module options.
func (c LockdownConfig) ModuleOptions() map[string]any {
	opts := map[string]any{
		"files": c.Files,
	}
	if c.DependencyKeys != nil {
		opts["dependency_keys"] = c.DependencyKeys
	}
	return opts
}
