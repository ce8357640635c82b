package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/lockdown/src/config"
)

// pinModule flags every line containing "^" in files named *.pin.
type pinModule struct {
	checks *atomic.Int64
	fail   bool
}

func (m *pinModule) Name() string             { return "testpin" }
func (m *pinModule) DefaultEnabled() bool     { return true }
func (m *pinModule) Applies(path string) bool { return strings.HasSuffix(path, ".pin") }

func (m *pinModule) Configure(opts map[string]any) error {
	if v, ok := opts["fail"].(bool); ok {
		m.fail = v
	}
	return nil
}

func (m *pinModule) Check(ctx context.Context, file FileInfo) ([]Finding, error) {
	m.checks.Add(1)
	if m.fail {
		return nil, errors.New("boom")
	}
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}
	var out []Finding
	for i, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "^") {
			out = append(out, Finding{File: file.Path, Line: i + 1, Module: m.Name(), Severity: SeverityWarning, Message: line})
		}
	}
	return out, nil
}

// optInModule is registered but not enabled by default.
type optInModule struct{}

func (optInModule) Name() string         { return "testoptin" }
func (optInModule) DefaultEnabled() bool { return false }
func (optInModule) Check(ctx context.Context, file FileInfo) ([]Finding, error) {
	return nil, nil
}

var pinChecks atomic.Int64

func init() {
	Register("testpin", func() Module { return &pinModule{checks: &pinChecks} })
	Register("testoptin", func() Module { return optInModule{} })
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestRegister_Duplicate(t *testing.T) {
	assert.Panics(t, func() {
		Register("testpin", func() Module { return &pinModule{checks: &pinChecks} })
	})
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("does-not-exist")
	assert.Error(t, err)
}

func TestNewEngine_Selection(t *testing.T) {
	cfg := config.DefaultLintConfig()

	e, err := NewEngine(cfg, t.TempDir(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, e.ModuleNames(), "testpin")
	assert.NotContains(t, e.ModuleNames(), "testoptin")

	enabled := true
	cfg.Modules["testoptin"] = config.ModuleConfig{Enabled: &enabled}
	e, err = NewEngine(cfg, t.TempDir(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, e.ModuleNames(), "testoptin")

	e, err = NewEngine(cfg, t.TempDir(), []string{"testoptin"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"testoptin"}, e.ModuleNames())

	_, err = NewEngine(cfg, t.TempDir(), []string{"testpin"}, []string{"testpin"}, nil, nil)
	assert.Error(t, err)
}

func TestEngine_CollectFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.pin":                 "^1",
		"sub/b.pin":             "^2",
		"node_modules/x/c.pin":  "^3",
		".git/config":           "",
		"vendor/d.pin":          "^4",
		"sub/deep/package.json": "{}",
	})

	cfg := config.DefaultLintConfig()
	cfg.Exclude = []string{"vendor/**"}
	e, err := NewEngine(cfg, root, []string{"testpin"}, nil, nil, nil)
	require.NoError(t, err)

	files, err := e.CollectFiles()
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"a.pin", "sub/b.pin", "sub/deep/package.json"}, paths)
}

func TestEngine_RunWithStats(t *testing.T) {
	root := writeTree(t, map[string]string{
		"b.pin":     "ok\n^2\n",
		"a.pin":     "^1\nok\n^3\n",
		"notes.txt": "^ignored",
	})

	e, err := NewEngine(config.DefaultLintConfig(), root, []string{"testpin"}, nil, nil, nil)
	require.NoError(t, err)
	files, err := e.CollectFiles()
	require.NoError(t, err)

	findings, stats, err := e.RunWithStats(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, findings, 3)
	assert.Equal(t, "a.pin", findings[0].File)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, 3, findings[1].Line)
	assert.Equal(t, "b.pin", findings[2].File)

	require.Len(t, stats, 1)
	assert.Equal(t, ModuleStats{Name: "testpin", Files: 2, Findings: 3, Warnings: 3}, stats[0])
}

func TestEngine_ModuleExclude(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.pin":          "^1",
		"fixtures/b.pin": "^2",
	})

	cfg := config.DefaultLintConfig()
	cfg.Modules["testpin"] = config.ModuleConfig{Exclude: []string{"fixtures/**"}}
	e, err := NewEngine(cfg, root, []string{"testpin"}, nil, nil, nil)
	require.NoError(t, err)
	files, err := e.CollectFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)

	findings, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "a.pin", findings[0].File)
}

func TestEngine_ModuleErrorsAreCollected(t *testing.T) {
	root := writeTree(t, map[string]string{"a.pin": "^1", "b.pin": "^2"})

	cfg := config.DefaultLintConfig()
	cfg.Modules["testpin"] = config.ModuleConfig{Options: map[string]any{"fail": true}}
	e, err := NewEngine(cfg, root, []string{"testpin"}, nil, nil, nil)
	require.NoError(t, err)
	files, err := e.CollectFiles()
	require.NoError(t, err)

	findings, stats, err := e.RunWithStats(context.Background(), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 module errors")
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, findings)
	assert.Equal(t, 2, stats[0].Files)
}

func TestEngine_Cache(t *testing.T) {
	root := writeTree(t, map[string]string{"a.pin": "^1\n"})
	cache := &Cache{Dir: ResolveCacheDir(root, ""), Enabled: true}

	e, err := NewEngine(config.DefaultLintConfig(), root, []string{"testpin"}, nil, cache, nil)
	require.NoError(t, err)
	files := []FileInfo{{Path: "a.pin", AbsPath: filepath.Join(root, "a.pin")}}

	before := pinChecks.Load()
	first, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	second, stats, err := e.RunWithStats(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), pinChecks.Load()-before)
	assert.Equal(t, int64(1), e.CacheHits.Load())
	assert.Equal(t, int64(1), e.CacheMisses.Load())
	assert.Equal(t, 1, stats[0].Cached)

	// Changed content misses.
	require.NoError(t, os.WriteFile(files[0].AbsPath, []byte("^1\n^2\n"), 0o644))
	third, err := e.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, int64(2), pinChecks.Load()-before)
}

func TestEngine_CancelledContext(t *testing.T) {
	root := writeTree(t, map[string]string{"a.pin": "^1"})
	e, err := NewEngine(config.DefaultLintConfig(), root, []string{"testpin"}, nil, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx, []FileInfo{{Path: "a.pin", AbsPath: filepath.Join(root, "a.pin")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortFindings(t *testing.T) {
	findings := []Finding{
		{File: "b", Line: 1},
		{File: "a", Line: 2, Module: "z"},
		{File: "a", Line: 2, Module: "m"},
		{File: "a", Line: 1, Column: 4},
		{File: "a", Line: 1, Column: 2},
	}
	SortFindings(findings)

	assert.Equal(t, []Finding{
		{File: "a", Line: 1, Column: 2},
		{File: "a", Line: 1, Column: 4},
		{File: "a", Line: 2, Module: "m"},
		{File: "a", Line: 2, Module: "z"},
		{File: "b", Line: 1},
	}, findings)
}

func TestEngine_Wants(t *testing.T) {
	cfg := config.DefaultLintConfig()
	cfg.Exclude = []string{"vendor/**"}
	cfg.Modules = map[string]config.ModuleConfig{"testpin": {Exclude: []string{"fixtures/**"}}}

	e, err := NewEngine(cfg, t.TempDir(), []string{"testpin"}, nil, nil, nil)
	require.NoError(t, err)

	assert.True(t, e.Wants("a.pin"))
	assert.True(t, e.Wants("web/a.pin"))
	assert.False(t, e.Wants("a.txt"))
	assert.False(t, e.Wants("vendor/a.pin"))
	assert.False(t, e.Wants("fixtures/a.pin"))
}
