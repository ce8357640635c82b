package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sofmeright/lockdown/src/config"
)

// skipDirs are directory names never descended into, besides hidden ones.
var skipDirs = map[string]bool{
	"node_modules": true,
}

// Engine orchestrates lint modules across files.
type Engine struct {
	Config  config.LintConfig
	RootDir string
	Modules []Module
	Cache   *Cache
	Log     *zap.Logger

	CacheHits   atomic.Int64
	CacheMisses atomic.Int64
}

// NewEngine creates a lint engine with the selected modules.
// A nil cache disables caching; a nil logger discards diagnostics.
func NewEngine(cfg config.LintConfig, rootDir string, moduleNames []string, skipNames []string, cache *Cache, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	skipSet := make(map[string]bool, len(skipNames))
	for _, name := range skipNames {
		skipSet[name] = true
	}

	var modules []Module

	if len(moduleNames) > 0 {
		// Explicit module selection
		for _, name := range moduleNames {
			if skipSet[name] {
				continue
			}
			m, err := Get(name)
			if err != nil {
				return nil, err
			}
			if err := configureModule(m, cfg, name); err != nil {
				return nil, err
			}
			modules = append(modules, m)
		}
	} else {
		// All default-enabled modules minus skipped
		for _, name := range All() {
			if skipSet[name] {
				continue
			}

			// Config can force a module on or off.
			mc, hasCfg := cfg.Modules[name]
			if hasCfg && mc.Enabled != nil && !*mc.Enabled {
				continue
			}

			m, err := Get(name)
			if err != nil {
				return nil, err
			}
			forced := hasCfg && mc.Enabled != nil && *mc.Enabled
			if !m.DefaultEnabled() && !forced {
				continue
			}
			if err := configureModule(m, cfg, name); err != nil {
				return nil, err
			}
			modules = append(modules, m)
		}
	}

	if len(modules) == 0 {
		return nil, fmt.Errorf("no lint modules selected")
	}

	return &Engine{
		Config:  cfg,
		RootDir: rootDir,
		Modules: modules,
		Cache:   cache,
		Log:     log,
	}, nil
}

// ModuleStats holds per-module scan statistics.
type ModuleStats struct {
	Name     string
	Files    int
	Cached   int
	Findings int
	Critical int
	Warnings int
}

func (s *ModuleStats) add(findings []Finding) {
	for _, f := range findings {
		s.Findings++
		switch f.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warnings++
		}
	}
}

// Run executes all modules against the given files and returns findings.
func (e *Engine) Run(ctx context.Context, files []FileInfo) ([]Finding, error) {
	findings, _, err := e.RunWithStats(ctx, files)
	return findings, err
}

// RunWithStats executes all modules and returns sorted findings plus
// per-module statistics. Module errors do not stop the run; they are
// joined into the returned error after every check has finished.
func (e *Engine) RunWithStats(ctx context.Context, files []FileInfo) ([]Finding, []ModuleStats, error) {
	var (
		mu       sync.Mutex
		findings []Finding
		wg       sync.WaitGroup
		errs     []error
	)

	sem := semaphore.NewWeighted(int64(runtime.NumCPU() * 2))

	// Per-module stat counters (index matches e.Modules)
	modStats := make([]ModuleStats, len(e.Modules))
	for i, m := range e.Modules {
		modStats[i].Name = m.Name()
	}

	record := func(idx int, f FileInfo, results []Finding, cached bool, err error) {
		mu.Lock()
		defer mu.Unlock()
		modStats[idx].Files++
		if cached {
			modStats[idx].Cached++
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", e.Modules[idx].Name(), f.Path, err))
			return
		}
		modStats[idx].add(results)
		findings = append(findings, results...)
	}

scan:
	for _, file := range files {
		if matchAny(e.Config.Exclude, file.Path) {
			continue
		}

		var content []byte
		contentRead := false

		for mi, mod := range e.Modules {
			if !e.applies(mod, file.Path) {
				continue
			}

			// Read file content once for cache keying
			if e.cacheEnabled() && !contentRead {
				contentRead = true
				data, err := os.ReadFile(file.AbsPath)
				if err != nil {
					e.Log.Debug("cache: read failed, running uncached", zap.String("file", file.Path), zap.Error(err))
				} else {
					content = data
				}
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				break scan
			}
			wg.Add(1)
			go func(m Module, f FileInfo, data []byte, idx int) {
				defer wg.Done()
				defer sem.Release(1)
				e.checkOne(ctx, m, f, data, idx, record)
			}(mod, file, content, mi)
		}
	}

	wg.Wait()

	SortFindings(findings)

	if len(errs) > 0 {
		return findings, modStats, fmt.Errorf("%d module errors (first: %w)", len(errs), errs[0])
	}
	return findings, modStats, nil
}

func (e *Engine) checkOne(ctx context.Context, m Module, f FileInfo, data []byte, idx int, record func(int, FileInfo, []Finding, bool, error)) {
	if !e.cacheEnabled() || data == nil {
		results, err := m.Check(ctx, f)
		record(idx, f, results, false, err)
		return
	}

	key := e.Cache.Key(normalizeSlashPath(f.Path), data, m.Name(), e.moduleConfigJSON(m.Name()))
	if cached, ok := e.Cache.Get(key); ok {
		e.CacheHits.Add(1)
		record(idx, f, cached, true, nil)
		return
	}
	e.CacheMisses.Add(1)

	results, err := m.Check(ctx, f)
	record(idx, f, results, false, err)
	if err != nil {
		return
	}
	// Cache even empty results (clean pass).
	if cacheErr := e.Cache.Put(key, results); cacheErr != nil {
		e.Log.Debug("cache: write failed", zap.String("module", m.Name()), zap.String("file", f.Path), zap.Error(cacheErr))
	}
}

func (e *Engine) cacheEnabled() bool {
	return e.Cache != nil && e.Cache.Enabled
}

// applies combines the module's own file filter with its configured excludes.
func (e *Engine) applies(m Module, path string) bool {
	if fm, ok := m.(FilteringModule); ok && !fm.Applies(path) {
		return false
	}
	if mc, ok := e.Config.Modules[m.Name()]; ok && matchAny(mc.Exclude, path) {
		return false
	}
	return true
}

// Wants reports whether any active module would check path.
func (e *Engine) Wants(path string) bool {
	if matchAny(e.Config.Exclude, path) {
		return false
	}
	for _, m := range e.Modules {
		if e.applies(m, path) {
			return true
		}
	}
	return false
}

// SortFindings orders findings by file, line, column, module and message.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Column != b.Column {
			return a.Column < b.Column
		}
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Message < b.Message
	})
}

// CollectFiles walks the root directory and returns FileInfo for all
// regular files outside hidden directories and node_modules.
func (e *Engine) CollectFiles() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(e.RootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(e.RootDir, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			base := filepath.Base(rel)
			if rel != "." && (strings.HasPrefix(base, ".") || skipDirs[base]) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if matchAny(e.Config.Exclude, rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		files = append(files, FileInfo{
			Path:    filepath.ToSlash(rel),
			AbsPath: path,
			Size:    info.Size(),
		})
		return nil
	})

	return files, err
}

// ModuleNames returns the names of all active modules in this engine.
func (e *Engine) ModuleNames() []string {
	names := make([]string, len(e.Modules))
	for i, m := range e.Modules {
		names[i] = m.Name()
	}
	return names
}

// configureModule passes YAML options to modules that implement ConfigurableModule.
func configureModule(m Module, cfg config.LintConfig, name string) error {
	cm, ok := m.(ConfigurableModule)
	if !ok {
		return nil
	}
	mc, exists := cfg.Modules[name]
	if !exists || mc.Options == nil {
		// Call with nil so the module can apply defaults.
		return cm.Configure(nil)
	}
	return cm.Configure(mc.Options)
}

func (e *Engine) moduleConfigJSON(name string) string {
	mc, ok := e.Config.Modules[name]
	if !ok || mc.Options == nil {
		return "{}"
	}
	data, err := json.Marshal(mc.Options)
	if err != nil {
		return "{}"
	}
	return string(data)
}
