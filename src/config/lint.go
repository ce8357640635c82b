package config

// Level controls how much of the codebase gets scanned.
type Level string

const (
	LevelChanged Level = "changed"
	LevelFull    Level = "full"
)

// ModuleConfig holds per-module overrides.
type ModuleConfig struct {
	Enabled *bool          `yaml:"enabled,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
	Exclude []string       `yaml:"exclude,omitempty"`
}

// LintConfig holds lint-specific configuration.
type LintConfig struct {
	Level        Level                   `yaml:"level"`
	CacheDir     string                  `yaml:"cache_dir"`
	TargetBranch string                  `yaml:"target_branch"`
	Exclude      []string                `yaml:"exclude"`
	Modules      map[string]ModuleConfig `yaml:"modules"`
}

// DefaultLintConfig returns production defaults.
func DefaultLintConfig() LintConfig {
	return LintConfig{
		Level:   LevelChanged,
		Exclude: []string{},
		Modules: map[string]ModuleConfig{},
	}
}

// WithDefaultOptions returns a copy of c where module name gets opts for
// every option key it does not already set.
func (c LintConfig) WithDefaultOptions(name string, opts map[string]any) LintConfig {
	modules := make(map[string]ModuleConfig, len(c.Modules)+1)
	for k, v := range c.Modules {
		modules[k] = v
	}

	mc := modules[name]
	merged := make(map[string]any, len(opts)+len(mc.Options))
	for k, v := range opts {
		merged[k] = v
	}
	for k, v := range mc.Options {
		merged[k] = v
	}
	mc.Options = merged
	modules[name] = mc

	c.Modules = modules
	return c
}
