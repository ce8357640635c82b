// Package output renders lockdown results for terminals and CI hosts.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sofmeright/lockdown/src/lint"
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	yellow = "\033[33m"
	gray   = "\033[90m"
	bold   = "\033[1m"
	frame  = "\033[2;36m"
)

// palette paints text when true.
type palette bool

func (p palette) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + reset
}

func (p palette) severity(s lint.Severity) string {
	switch s {
	case lint.SeverityCritical:
		return p.paint(red, "CRIT")
	case lint.SeverityWarning:
		return p.paint(yellow, "WARN")
	case lint.SeverityInfo:
		return p.paint(gray, "INFO")
	}
	return s.String()
}

// UseColor honours NO_COLOR and TERM=dumb, then colors terminals and CI logs.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	if DetectCI().Active() {
		return true
	}
	fi, err := os.Stdout.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// Summary totals the findings of a lint run.
type Summary struct {
	Scanned  int // files handed to the engine
	Affected int // files with at least one finding
	Critical int
	Warning  int
	Info     int
}

// Summarize counts findings by severity and by file.
func Summarize(findings []lint.Finding, scanned int) Summary {
	s := Summary{Scanned: scanned}
	seen := make(map[string]bool)
	for _, f := range findings {
		if !seen[f.File] {
			seen[f.File] = true
			s.Affected++
		}
		switch f.Severity {
		case lint.SeverityCritical:
			s.Critical++
		case lint.SeverityWarning:
			s.Warning++
		default:
			s.Info++
		}
	}
	return s
}

// Total is the number of findings.
func (s Summary) Total() int { return s.Critical + s.Warning + s.Info }

// Line renders e.g. "3 findings in 2 of 5 files: 1 critical, 2 warning".
func (s Summary) Line(color bool) string {
	if s.Total() == 0 {
		return fmt.Sprintf("no findings in %d files", s.Scanned)
	}
	p := palette(color)
	var parts []string
	if s.Critical > 0 {
		parts = append(parts, p.paint(red, fmt.Sprintf("%d critical", s.Critical)))
	}
	if s.Warning > 0 {
		parts = append(parts, p.paint(yellow, fmt.Sprintf("%d warning", s.Warning)))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	return fmt.Sprintf("%s findings in %d of %d files: %s",
		p.paint(bold, fmt.Sprint(s.Total())), s.Affected, s.Scanned, strings.Join(parts, ", "))
}

// ModuleTable writes per-module counts followed by a total row.
func ModuleTable(sec *Section, stats []lint.ModuleStats) {
	sec.Row("%-16s%6s  %6s  %s", "module", "files", "cached", "findings")
	var total lint.ModuleStats
	for _, s := range stats {
		sec.Row("%-16s%5d   %5d   %5d", s.Name, s.Files, s.Cached, s.Findings)
		total.Files += s.Files
		total.Cached += s.Cached
		total.Findings += s.Findings
		total.Critical += s.Critical
	}
	sec.Rule()
	sec.Row("%-16s%5d   %5d   %5d (%d critical)", "total", total.Files, total.Cached, total.Findings, total.Critical)
}

// FindingsByFile writes findings grouped under their file, files in lexical
// order and findings by position.
func FindingsByFile(sec *Section, findings []lint.Finding, color bool) {
	byFile := map[string][]lint.Finding{}
	for _, f := range findings {
		byFile[f.File] = append(byFile[f.File], f)
	}
	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	p := palette(color)
	for _, file := range files {
		ff := byFile[file]
		lint.SortFindings(ff)

		sec.Row("%s", p.paint(bold, file))
		for _, f := range ff {
			sec.Row("  %-8s %-4s  %-10s %s", location(f), p.severity(f.Severity), f.Module, f.Message)
		}
		sec.Row("")
	}
}

// location is "line", "line:col", or "-" when the line is unknown.
func location(f lint.Finding) string {
	switch {
	case f.Line == 0:
		return "-"
	case f.Column > 0:
		return fmt.Sprintf("%d:%d", f.Line, f.Column)
	}
	return fmt.Sprint(f.Line)
}
