package lockdown

import (
	"errors"
	"fmt"
)

// WarningMessage is the text reported for a package with a loose version.
func WarningMessage(pkg string) string {
	return fmt.Sprintf("`%s` doesn't specify fixed version number", pkg)
}

// Sink accepts warnings attached to a file and line. Line is 0 when unknown.
type Sink interface {
	Warn(message, file string, line int)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(message, file string, line int)

// Warn calls f.
func (f SinkFunc) Warn(message, file string, line int) { f(message, file, line) }

// Reporter turns inspection results into warnings on a Sink.
type Reporter struct {
	inspector *Inspector
	sink      Sink
}

// NewReporter returns a Reporter. A nil inspector means the defaults; a
// nil sink discards warnings.
func NewReporter(inspector *Inspector, sink Sink) *Reporter {
	if inspector == nil {
		inspector = NewInspector()
	}
	if sink == nil {
		sink = SinkFunc(func(string, string, int) {})
	}
	return &Reporter{inspector: inspector, sink: sink}
}

// Inspector returns the inspector used by Verify, so callers can change
// its dependency keys between runs.
func (r *Reporter) Inspector() *Inspector { return r.inspector }

// Verify inspects the manifest at path and emits one warning per finding.
// A *ParseError is returned unchanged and nothing is emitted.
func (r *Reporter) Verify(path string) error {
	findings, err := r.inspector.Inspect(path)
	if err != nil {
		return err
	}
	r.emit(findings, path)
	return nil
}

// VerifyBytes is Verify over content in memory; warnings name file.
func (r *Reporter) VerifyBytes(data []byte, file string) error {
	findings, err := r.inspector.InspectBytes(data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = file
		}
		return err
	}
	r.emit(findings, file)
	return nil
}

func (r *Reporter) emit(findings []Finding, file string) {
	for _, f := range findings {
		r.sink.Warn(WarningMessage(f.Package), file, f.Line)
	}
}

// Warning is one message recorded by a Collector.
type Warning struct {
	Message string
	File    string
	Line    int
}

// Collector is a Sink that keeps every warning in memory.
type Collector struct {
	warnings []Warning
}

// Warn implements Sink.
func (c *Collector) Warn(message, file string, line int) {
	c.warnings = append(c.warnings, Warning{Message: message, File: file, Line: line})
}

// Warnings returns the recorded warnings in emission order.
func (c *Collector) Warnings() []Warning {
	return append([]Warning{}, c.warnings...)
}

// Messages returns just the message text of each recorded warning.
func (c *Collector) Messages() []string {
	msgs := make([]string, len(c.warnings))
	for i, w := range c.warnings {
		msgs[i] = w.Message
	}
	return msgs
}

// Reset drops all recorded warnings.
func (c *Collector) Reset() { c.warnings = nil }
