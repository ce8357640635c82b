package output

import (
	"fmt"
	"io"
	"os"
	"time"
)

// CIHost identifies the CI system lockdown runs under.
type CIHost int

const (
	CINone CIHost = iota
	CIGeneric
	CIGitHub
	CIGitLab
)

// DetectCI inspects the environment. GitHub and GitLab are recognised by
// their own variables before the generic CI=true.
func DetectCI() CIHost {
	switch {
	case os.Getenv("GITHUB_ACTIONS") == "true":
		return CIGitHub
	case os.Getenv("GITLAB_CI") == "true":
		return CIGitLab
	case os.Getenv("CI") == "true":
		return CIGeneric
	}
	return CINone
}

// Active reports whether any CI system was detected.
func (h CIHost) Active() bool { return h != CINone }

// Fold opens a collapsible log group and returns the function that closes
// it. Hosts without log groups write nothing.
func (h CIHost) Fold(w io.Writer, id, title string) (end func()) {
	switch h {
	case CIGitHub:
		fmt.Fprintf(w, "::group::%s\n", title)
		return func() { fmt.Fprintln(w, "::endgroup::") }
	case CIGitLab:
		fmt.Fprintf(w, "\033[0Ksection_start:%d:%s[collapsed=false]\r\033[0K%s\n", time.Now().Unix(), id, title)
		return func() { fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id) }
	}
	return func() {}
}
