package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sofmeright/lockdown/src/lint"
	"github.com/sofmeright/lockdown/src/lockdown"
)

func TestAnnotationSink_Plain(t *testing.T) {
	var buf bytes.Buffer
	s := NewAnnotationSink(&buf, FormatPlain)

	s.Warn("`a` doesn't specify fixed version number", "package.json", 4)
	s.Warn("`b` doesn't specify fixed version number", "package.json", 0)

	assert.Equal(t,
		"package.json:4: warning: `a` doesn't specify fixed version number\n"+
			"package.json: warning: `b` doesn't specify fixed version number\n",
		buf.String())
	assert.Equal(t, 2, s.Count())
}

func TestAnnotationSink_GitHub(t *testing.T) {
	var buf bytes.Buffer
	s := NewAnnotationSink(&buf, FormatGitHub)

	s.Warn("100% loose\nnext", "apps/web,v2/package.json", 7)
	s.Warn("m", "package.json", 0)

	assert.Equal(t,
		"::warning file=apps/web%2Cv2/package.json,line=7::100%25 loose%0Anext\n"+
			"::warning file=package.json::m\n",
		buf.String())
}

// AnnotationSink must satisfy the reporter's sink contract.
var _ lockdown.Sink = (*AnnotationSink)(nil)

func TestDetectAnnotationFormat(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.Equal(t, FormatGitHub, DetectAnnotationFormat())

	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "true")
	assert.Equal(t, FormatPlain, DetectAnnotationFormat())
}

func TestSummary(t *testing.T) {
	s := Summarize([]lint.Finding{
		{File: "package.json", Severity: lint.SeverityWarning},
		{File: "package.json", Severity: lint.SeverityWarning},
		{File: "web/package.json", Severity: lint.SeverityCritical},
		{File: "web/package.json", Severity: lint.SeverityInfo},
	}, 5)

	assert.Equal(t, Summary{Scanned: 5, Affected: 2, Critical: 1, Warning: 2, Info: 1}, s)
	assert.Equal(t, 4, s.Total())
	assert.Equal(t, "4 findings in 2 of 5 files: 1 critical, 2 warning, 1 info", s.Line(false))
	assert.Equal(t, "no findings in 3 files", Summarize(nil, 3).Line(false))
}

func TestSection(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Lint", "12ms", false)
	sec.Row("%s", "row")
	sec.Close()

	lines := strings.Split(strings.TrimPrefix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "    ── Lint ─"))
	assert.True(t, strings.HasSuffix(lines[0], " 12ms ──"))
	assert.Equal(t, "    │ row", lines[1])
}

func TestElapsed(t *testing.T) {
	assert.Equal(t, "", Elapsed(0))
	assert.Equal(t, "<1ms", Elapsed(time.Microsecond))
	assert.Equal(t, "250ms", Elapsed(250*time.Millisecond))
	assert.Equal(t, "1.5s", Elapsed(1500*time.Millisecond))
	assert.Equal(t, "2m3.0s", Elapsed(123*time.Second))
}

func TestModuleTable(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Lint", "", false)
	ModuleTable(sec, []lint.ModuleStats{
		{Name: "lockdown", Files: 3, Cached: 1, Findings: 2},
		{Name: "json", Files: 4, Findings: 1, Critical: 1},
	})
	sec.Close()

	out := buf.String()
	assert.Contains(t, out, "lockdown            3       1       2")
	assert.Contains(t, out, "total               7       1       3 (1 critical)")
}

func TestFindingsByFile(t *testing.T) {
	var buf bytes.Buffer
	sec := NewSection(&buf, "Findings", "", false)
	FindingsByFile(sec, []lint.Finding{
		{File: "web/package.json", Line: 9, Module: "lockdown", Severity: lint.SeverityWarning, Message: "second"},
		{File: "package.json", Module: "lockdown", Severity: lint.SeverityWarning, Message: "unplaced"},
		{File: "web/package.json", Line: 3, Module: "lockdown", Severity: lint.SeverityWarning, Message: "first"},
		{File: "tsconfig.json", Line: 2, Column: 5, Module: "json", Severity: lint.SeverityCritical, Message: "bad"},
	}, false)
	sec.Close()

	out := buf.String()
	assert.Contains(t, out, "── Findings ")
	assert.Less(t, strings.Index(out, "package.json\n"), strings.Index(out, "web/package.json"))
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))
	assert.Contains(t, out, "  -        WARN  lockdown   unplaced")
	assert.Contains(t, out, "  2:5      CRIT  json       bad")
}

func TestDetectCI(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("GITLAB_CI", "")
	t.Setenv("CI", "")
	assert.Equal(t, CINone, DetectCI())
	assert.False(t, DetectCI().Active())

	t.Setenv("CI", "true")
	assert.Equal(t, CIGeneric, DetectCI())

	t.Setenv("GITLAB_CI", "true")
	assert.Equal(t, CIGitLab, DetectCI())

	t.Setenv("GITHUB_ACTIONS", "true")
	assert.Equal(t, CIGitHub, DetectCI())
}

func TestFold(t *testing.T) {
	var buf bytes.Buffer
	end := CIGitHub.Fold(&buf, "lockdown_lint", "Lint")
	buf.WriteString("body\n")
	end()
	assert.Equal(t, "::group::Lint\nbody\n::endgroup::\n", buf.String())

	buf.Reset()
	end = CIGitLab.Fold(&buf, "lockdown_lint", "Lint")
	end()
	assert.Contains(t, buf.String(), "section_start:")
	assert.Contains(t, buf.String(), ":lockdown_lint[collapsed=false]\r")
	assert.Contains(t, buf.String(), "section_end:")

	buf.Reset()
	CINone.Fold(&buf, "lockdown_lint", "Lint")()
	assert.Empty(t, buf.String())
}

func TestBuildLintJUnit(t *testing.T) {
	files := []lint.FileInfo{{Path: "package.json"}, {Path: "web/package.json"}}
	findings := []lint.Finding{
		{File: "web/package.json", Line: 7, Module: "lockdown", Severity: lint.SeverityWarning, Message: "`b` loose"},
		{File: "web/package.json", Line: 3, Module: "lockdown", Severity: lint.SeverityWarning, Message: "`a` loose"},
	}

	got := BuildLintJUnit(findings, files, time.Second, lint.SeverityWarning)
	require.Len(t, got.Suites, 2)
	assert.Equal(t, 3, got.Tests)
	assert.Equal(t, 2, got.Failures)

	clean := got.Suites[0]
	assert.Equal(t, "package.json", clean.Name)
	require.Len(t, clean.Cases, 1)
	assert.Equal(t, "clean", clean.Cases[0].Name)
	assert.Nil(t, clean.Cases[0].Failure)

	web := got.Suites[1]
	require.Len(t, web.Cases, 2)
	assert.Equal(t, "3 `a` loose", web.Cases[0].Name)
	assert.Equal(t, "lockdown.lockdown", web.Cases[0].Classname)
	require.NotNil(t, web.Cases[0].Failure)
	assert.Equal(t, "warning", web.Cases[0].Failure.Type)

	lenient := BuildLintJUnit(findings, files, time.Second, lint.SeverityCritical)
	assert.Equal(t, 3, lenient.Tests)
	assert.Equal(t, 0, lenient.Failures)
}

func TestWriteLintJUnit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteLintJUnit(dir, nil, []lint.FileInfo{{Path: "package.json"}}, 0, lint.SeverityWarning))

	data, err := os.ReadFile(filepath.Join(dir, "lint.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuite name="package.json" tests="1" failures="0">`)
}

func TestWriteFindingsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFindingsJSON(&buf, []ManifestReport{{
		File:     "package.json",
		Findings: []lockdown.Finding{{Package: "<a>", Version: "^1.0.0", Line: 2}},
	}}))

	var back []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "package.json", back[0]["file"])
	assert.Contains(t, buf.String(), `"package": "<a>"`)
	assert.Contains(t, buf.String(), `"line": "2"`)

	buf.Reset()
	require.NoError(t, WriteFindingsJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFindingsTable(t *testing.T) {
	var buf bytes.Buffer
	FindingsTable(&buf, []ManifestReport{
		{File: "package.json", Findings: []lockdown.Finding{{Package: "a", Version: "", Line: 0}}},
		{File: "web/package.json"},
	}, false)

	out := buf.String()
	assert.Contains(t, out, `-        a`)
	assert.Contains(t, out, `""`)
	assert.Contains(t, out, "no loose versions")
	assert.Contains(t, out, " 1 loose ──")
}
