package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sofmeright/lockdown/src/lockdown"
)

// ManifestReport is the inspection result for one manifest.
type ManifestReport struct {
	File     string             `json:"file"`
	Findings []lockdown.Finding `json:"findings"`
}

// WriteFindingsJSON writes reports as an indented JSON array.
func WriteFindingsJSON(w io.Writer, reports []ManifestReport) error {
	if reports == nil {
		reports = []ManifestReport{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(reports)
}

// FindingsTable renders reports as a framed table, one section per manifest.
func FindingsTable(w io.Writer, reports []ManifestReport, color bool) {
	for _, r := range reports {
		note := ""
		if n := len(r.Findings); n > 0 {
			note = fmt.Sprintf("%d loose", n)
		}
		sec := NewSection(w, r.File, note, color)
		if len(r.Findings) == 0 {
			sec.Row("no loose versions")
			sec.Close()
			continue
		}
		sec.Row("%-8s %-36s %s", "line", "package", "version")
		sec.Rule()
		for _, f := range r.Findings {
			line := f.LineString()
			if line == "" {
				line = "-"
			}
			sec.Row("%-8s %-36s %s", line, f.Package, fmt.Sprintf("%q", f.Version))
		}
		sec.Close()
	}
}
