// Package lockdown flags dependency entries in a JSON manifest whose
// version constraint is a range, a wildcard or empty instead of a pinned
// release.
package lockdown

import "os"

// DefaultDependencyKeys are the package.json sections that hold dependencies.
var DefaultDependencyKeys = []string{
	"dependencies",
	"devDependencies",
	"peerDependencies",
	"bundleDependencies",
	"bundledDependencies",
	"optionalDependencies",
}

// Inspector finds loose version constraints in a manifest.
// The zero value inspects DefaultDependencyKeys.
type Inspector struct {
	keys []string
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithDependencyKeys restricts inspection to the given sections.
func WithDependencyKeys(keys ...string) Option {
	return func(i *Inspector) { i.SetDependencyKeys(keys) }
}

// NewInspector returns an Inspector with opts applied.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// DependencyKeys returns the sections that will be inspected, in order.
func (i *Inspector) DependencyKeys() []string {
	if i.keys == nil {
		return append([]string(nil), DefaultDependencyKeys...)
	}
	return append([]string{}, i.keys...)
}

// SetDependencyKeys overrides the inspected sections. A nil slice restores
// the defaults; an empty non-nil slice disables every section.
func (i *Inspector) SetDependencyKeys(keys []string) {
	if keys == nil {
		i.keys = nil
		return
	}
	i.keys = append([]string{}, keys...)
}

// Inspect reads the manifest at path and returns its suspicious entries,
// ordered by section (in DependencyKeys order) and then by position within
// the section. Read and decode failures are returned as *ParseError.
func (i *Inspector) Inspect(path string) ([]Finding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return i.inspect(data, path)
}

// InspectBytes is Inspect over manifest content already in memory.
func (i *Inspector) InspectBytes(data []byte) ([]Finding, error) {
	return i.inspect(data, "")
}

func (i *Inspector) inspect(data []byte, path string) ([]Finding, error) {
	m, err := decodeManifest(data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	lines := newLineIndex(data)
	findings := []Finding{}

	for _, key := range i.DependencyKeys() {
		entries, ok := m.section(key)
		if !ok {
			continue
		}
		for _, e := range entries {
			if !Suspicious(e.Version) {
				continue
			}
			findings = append(findings, Finding{
				Package: e.Package,
				Version: e.Version,
				Line:    lines.find(e.Package),
			})
		}
	}

	return findings, nil
}
