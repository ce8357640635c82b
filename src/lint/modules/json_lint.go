package modules

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sofmeright/lockdown/src/lint"
)

func init() {
	lint.Register("json", func() lint.Module { return &jsonModule{} })
}

// jsonModule reports JSON files that do not parse. Disabled by default;
// JSON-with-comments files such as tsconfig.json would fail it.
type jsonModule struct{}

func (m *jsonModule) Name() string        { return "json" }
func (m *jsonModule) DefaultEnabled() bool { return false }

// Applies implements lint.FilteringModule.
func (m *jsonModule) Applies(path string) bool { return fileExt(path) == ".json" }

func (m *jsonModule) Check(ctx context.Context, file lint.FileInfo) ([]lint.Finding, error) {
	if !m.Applies(file.Path) {
		return nil, nil
	}

	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []lint.Finding{{
			File:     file.Path,
			Line:     1,
			Module:   m.Name(),
			Severity: lint.SeverityCritical,
			Message:  "JSON parse error: empty document",
		}}, nil
	}

	var doc any
	err = json.Unmarshal(data, &doc)
	if err == nil {
		return nil, nil
	}

	f := lint.Finding{
		File:     file.Path,
		Module:   m.Name(),
		Severity: lint.SeverityCritical,
		Message:  fmt.Sprintf("JSON parse error: %v", err),
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		f.Line, f.Column = offsetPosition(data, syntaxErr.Offset)
	}
	return []lint.Finding{f}, nil
}

// offsetPosition converts a byte offset into a 1-based line and column.
// json.SyntaxError offsets point just past the offending byte.
func offsetPosition(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset > 0 {
		offset--
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

func fileExt(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' || path[i] == '\\' {
			break
		}
	}
	return ""
}
