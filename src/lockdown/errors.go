package lockdown

import "fmt"

// ParseError reports a manifest that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("lockdown: parse manifest: %v", e.Err)
	}
	return fmt.Sprintf("lockdown: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
