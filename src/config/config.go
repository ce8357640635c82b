package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".lockdown.yml"

// Environment overrides applied after the file is read.
const (
	EnvDependencyKeys = "LOCKDOWN_DEPENDENCY_KEYS"
	EnvLintLevel      = "LOCKDOWN_LINT_LEVEL"
)

// Config is the top-level lockdown configuration.
type Config struct {
	Lockdown LockdownConfig `yaml:"lockdown"`
	Lint     LintConfig     `yaml:"lint"`
}

// Load reads configuration from a YAML file.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = defaultConfigFile
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	applyEnv(cfg)

	if _, err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Lockdown: DefaultLockdownConfig(),
		Lint:     DefaultLintConfig(),
	}
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvDependencyKeys); ok {
		cfg.Lockdown.DependencyKeys = splitList(v)
	}
	if v := os.Getenv(EnvLintLevel); v != "" {
		cfg.Lint.Level = Level(v)
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
