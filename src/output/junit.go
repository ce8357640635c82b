package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sofmeright/lockdown/src/lint"
)

// JUnitReport is the <testsuites> root of a lint report.
type JUnitReport struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Name     string       `xml:"name,attr"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Time     string       `xml:"time,attr"`
	Suites   []JUnitSuite `xml:"testsuite"`
}

// JUnitSuite holds the cases of one scanned file.
type JUnitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []JUnitCase `xml:"testcase"`
}

// JUnitCase is one finding, or the single "clean" case of a file without any.
type JUnitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// BuildLintJUnit turns every scanned file into a suite so CI test views
// list each loose dependency on its own. Findings below failOn are kept as
// passing cases.
func BuildLintJUnit(findings []lint.Finding, files []lint.FileInfo, elapsed time.Duration, failOn lint.Severity) JUnitReport {
	byFile := make(map[string][]lint.Finding)
	for _, f := range findings {
		byFile[f.File] = append(byFile[f.File], f)
	}

	report := JUnitReport{Name: "lockdown", Time: fmt.Sprintf("%.3f", elapsed.Seconds())}
	for _, file := range files {
		suite := JUnitSuite{Name: file.Path}

		ff := byFile[file.Path]
		lint.SortFindings(ff)
		if len(ff) == 0 {
			suite.Cases = []JUnitCase{{Name: "clean", Classname: file.Path}}
		}
		for _, f := range ff {
			tc := JUnitCase{
				Name:      fmt.Sprintf("%s %s", location(f), f.Message),
				Classname: "lockdown." + f.Module,
			}
			if f.Severity >= failOn {
				tc.Failure = &JUnitFailure{Message: f.Message, Type: f.Severity.String()}
				suite.Failures++
			}
			suite.Cases = append(suite.Cases, tc)
		}
		suite.Tests = len(suite.Cases)

		report.Tests += suite.Tests
		report.Failures += suite.Failures
		report.Suites = append(report.Suites, suite)
	}
	return report
}

// WriteLintJUnit writes the report to dir/lint.xml.
func WriteLintJUnit(dir string, findings []lint.Finding, files []lint.FileInfo, elapsed time.Duration, failOn lint.Severity) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	path := filepath.Join(dir, "lint.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(BuildLintJUnit(findings, files, elapsed, failOn)); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	_, err = io.WriteString(f, "\n")
	return err
}
