package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sofmeright/lockdown/src/lint"
	_ "github.com/sofmeright/lockdown/src/lint/modules"
	"github.com/sofmeright/lockdown/src/logging"
	"github.com/sofmeright/lockdown/src/output"
)

const reportDir = ".lockdown/reports"

var (
	lintLevel    string
	lintModules  []string
	lintNoModule []string
	lintNoCache  bool
	lintAll      bool
	lintStrict   bool
)

var lintCmd = &cobra.Command{
	Use:   "lint [root]",
	Short: "Check every manifest in a repository",
	Long: `Walk the repository and run the lint modules over it. The lockdown
module flags unpinned dependency versions in every package.json.

By default, only changed files are scanned (--level changed).
Use --level full or --all to scan everything.

Modules run in parallel and results are cached by content hash.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func init() {
	lintCmd.Flags().StringVar(&lintLevel, "level", "", "scan level: changed or full (default: from config, then changed)")
	lintCmd.Flags().StringSliceVar(&lintModules, "module", nil, "run only these modules (comma-separated)")
	lintCmd.Flags().StringSliceVar(&lintNoModule, "no-module", nil, "skip these modules (comma-separated)")
	lintCmd.Flags().BoolVar(&lintNoCache, "no-cache", false, "disable cache (clear and rescan)")
	lintCmd.Flags().BoolVar(&lintAll, "all", false, "scan all files (shorthand for --level full)")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "fail on warnings, not only critical findings")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	log := logging.L()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	level := lintLevel
	if lintAll {
		level = "full"
	}
	// CLI flag > config > default "changed"
	if level == "" && cfg.Lint.Level != "" {
		level = string(cfg.Lint.Level)
	}
	if level == "" {
		level = "changed"
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		if rootDir, err = filepath.Abs(args[0]); err != nil {
			return fmt.Errorf("resolving %s: %w", args[0], err)
		}
	}

	cache := &lint.Cache{
		Dir:     lint.ResolveCacheDir(rootDir, cfg.Lint.CacheDir),
		Enabled: !lintNoCache,
	}
	if lintNoCache {
		if err := cache.Clear(); err != nil {
			log.Debug("cache: clear failed", zap.Error(err))
		}
	}

	lintCfg := cfg.Lint.WithDefaultOptions("lockdown", cfg.Lockdown.ModuleOptions())
	engine, err := lint.NewEngine(lintCfg, rootDir, lintModules, lintNoModule, cache, log)
	if err != nil {
		return err
	}
	log.Debug("modules", zap.Strings("names", engine.ModuleNames()))

	files, err := engine.CollectFiles()
	if err != nil {
		return fmt.Errorf("collecting files: %w", err)
	}

	// Only changed manifests unless --level full
	if level != "full" {
		delta := &lint.Delta{
			RootDir:      rootDir,
			TargetBranch: cfg.Lint.TargetBranch,
			Relevant:     engine.Wants,
			Log:          log,
		}
		changes, deltaErr := delta.Changes(ctx)
		if deltaErr != nil {
			log.Debug("delta: falling back to full scan", zap.Error(deltaErr))
		}
		if changes != nil {
			total := len(files)
			files = changes.Filter(files)
			log.Debug("delta", zap.String("base", changes.Base), zap.Int("changed", len(files)), zap.Int("total", total))
		}
	}

	log.Debug("scanning", zap.Int("files", len(files)))

	color := output.UseColor()
	w := cmd.OutOrStdout()

	start := time.Now()
	findings, modStats, runErr := engine.RunWithStats(ctx, files)
	elapsed := time.Since(start)

	summary := output.Summarize(findings, len(files))

	failOn := lint.SeverityCritical
	if lintStrict {
		failOn = lint.SeverityWarning
	}

	ci := output.DetectCI()
	if ci.Active() {
		dir := filepath.Join(rootDir, reportDir)
		if jErr := output.WriteLintJUnit(dir, findings, files, elapsed, failOn); jErr != nil {
			log.Warn("failed to write junit report", zap.Error(jErr))
		}
	}

	end := ci.Fold(w, "lockdown_lint", "Lint")
	sec := output.NewSection(w, "Lint", output.Elapsed(elapsed), color)
	output.ModuleTable(sec, modStats)
	sec.Close()
	end()

	if summary.Total() > 0 {
		end = ci.Fold(w, "lockdown_findings", "Findings")
		fSec := output.NewSection(w, "Findings", "", color)
		output.FindingsByFile(fSec, findings, color)
		fSec.Rule()
		fSec.Row("%s", summary.Line(color))
		fSec.Close()
		end()
	}

	if cache.Enabled {
		log.Debug("cache", zap.Int64("hits", engine.CacheHits.Load()), zap.Int64("misses", engine.CacheMisses.Load()))
	}

	if runErr != nil {
		return fmt.Errorf("lint failed: %w", runErr)
	}
	if summary.Critical > 0 {
		return fmt.Errorf("lint failed: %d critical findings", summary.Critical)
	}
	if lintStrict && summary.Warning > 0 {
		return fmt.Errorf("lint failed: %d warnings", summary.Warning)
	}
	return nil
}
