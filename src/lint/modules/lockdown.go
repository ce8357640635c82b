package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sofmeright/lockdown/src/lint"
	"github.com/sofmeright/lockdown/src/lockdown"
)

var defaultManifestFiles = []string{"package.json"}

func init() {
	lint.Register("lockdown", func() lint.Module { return newLockdownModule() })
}

type lockdownConfig struct {
	DependencyKeys []string `json:"dependency_keys"`
	Files          []string `json:"files"`
}

// lockdownModule warns about dependency versions that are not pinned.
type lockdownModule struct {
	cfg       lockdownConfig
	inspector *lockdown.Inspector
}

func newLockdownModule() *lockdownModule {
	return &lockdownModule{
		cfg:       lockdownConfig{Files: defaultManifestFiles},
		inspector: lockdown.NewInspector(),
	}
}

func (m *lockdownModule) Name() string        { return "lockdown" }
func (m *lockdownModule) DefaultEnabled() bool { return true }

// Configure implements lint.ConfigurableModule.
func (m *lockdownModule) Configure(opts map[string]any) error {
	var cfg lockdownConfig
	if len(opts) != 0 {
		b, err := json.Marshal(opts)
		if err != nil {
			return fmt.Errorf("lockdown: marshal options: %w", err)
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return fmt.Errorf("lockdown: unmarshal options: %w", err)
		}
	}
	for i, key := range cfg.DependencyKeys {
		if key == "" {
			return fmt.Errorf("lockdown: dependency_keys[%d] is empty", i)
		}
	}
	if len(cfg.Files) == 0 {
		cfg.Files = defaultManifestFiles
	}

	m.cfg = cfg
	m.inspector = lockdown.NewInspector()
	m.inspector.SetDependencyKeys(cfg.DependencyKeys)
	return nil
}

// Applies implements lint.FilteringModule.
func (m *lockdownModule) Applies(path string) bool {
	for _, pattern := range m.cfg.Files {
		if lint.MatchPathOrBase(pattern, path) {
			return true
		}
	}
	return false
}

func (m *lockdownModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	if !m.Applies(file.Path) {
		return nil, nil
	}

	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, &lockdown.ParseError{Path: file.Path, Err: err}
	}

	var findings []lint.Finding
	sink := lockdown.SinkFunc(func(message, path string, line int) {
		findings = append(findings, lint.Finding{
			File:     path,
			Line:     line,
			Module:   m.Name(),
			Severity: lint.SeverityWarning,
			Message:  message,
		})
	})

	if err := lockdown.NewReporter(m.inspector, sink).VerifyBytes(data, file.Path); err != nil {
		return nil, err
	}
	return findings, nil
}
