package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// AnnotationFormat selects how warnings are written for the review host.
type AnnotationFormat int

const (
	// FormatPlain writes compiler-style "file:line: warning: msg" lines.
	FormatPlain AnnotationFormat = iota
	// FormatGitHub writes GitHub Actions workflow commands.
	FormatGitHub
)

// DetectAnnotationFormat picks the format for the current CI environment.
func DetectAnnotationFormat() AnnotationFormat {
	if DetectCI() == CIGitHub {
		return FormatGitHub
	}
	return FormatPlain
}

// AnnotationSink writes each warning as one line the CI host can attach
// to the file and line. It satisfies lockdown.Sink.
type AnnotationSink struct {
	w      io.Writer
	format AnnotationFormat

	mu    sync.Mutex
	count int
}

// NewAnnotationSink returns a sink writing to w.
func NewAnnotationSink(w io.Writer, format AnnotationFormat) *AnnotationSink {
	return &AnnotationSink{w: w, format: format}
}

// Warn writes one annotation.
func (s *AnnotationSink) Warn(message, file string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++

	switch s.format {
	case FormatGitHub:
		props := "file=" + escapeProperty(file)
		if line > 0 {
			props += fmt.Sprintf(",line=%d", line)
		}
		fmt.Fprintf(s.w, "::warning %s::%s\n", props, escapeData(message))
	default:
		if line > 0 {
			fmt.Fprintf(s.w, "%s:%d: warning: %s\n", file, line, message)
		} else {
			fmt.Fprintf(s.w, "%s: warning: %s\n", file, message)
		}
	}
}

// Count returns how many warnings have been written.
func (s *AnnotationSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// escapeData escapes a workflow command message.
func escapeData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

// escapeProperty escapes a workflow command property value.
func escapeProperty(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C").Replace(s)
}
