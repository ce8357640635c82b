package lockdown

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Finding is one dependency entry whose version is not pinned.
type Finding struct {
	Package string
	Version string
	Line    int // 1-based; 0 when the entry could not be located
}

// LineString returns the line as text, or "" when unknown.
func (f Finding) LineString() string {
	if f.Line <= 0 {
		return ""
	}
	return strconv.Itoa(f.Line)
}

type findingJSON struct {
	Package string `json:"package"`
	Version string `json:"version"`
	Line    string `json:"line"`
}

// MarshalJSON renders the line as a string, empty when unknown. Package
// names and versions are written as-is, without HTML escaping.
func (f Finding) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(findingJSON{
		Package: f.Package,
		Version: f.Version,
		Line:    f.LineString(),
	}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (f *Finding) UnmarshalJSON(data []byte) error {
	var raw findingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	f.Package = raw.Package
	f.Version = raw.Version
	f.Line = 0
	if raw.Line != "" {
		n, err := strconv.Atoi(raw.Line)
		if err != nil {
			return err
		}
		f.Line = n
	}
	return nil
}
