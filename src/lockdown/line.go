package lockdown

import "strings"

// lineIndex holds the raw lines of a manifest for key lookups.
type lineIndex []string

func newLineIndex(content []byte) lineIndex {
	return strings.Split(string(content), "\n")
}

// find returns the 1-based line of the first `"<pkg>":` occurrence, or 0.
func (l lineIndex) find(pkg string) int {
	target := `"` + pkg + `":`
	for i, line := range l {
		if strings.Contains(line, target) {
			return i + 1
		}
	}
	return 0
}

// LineOf returns the 1-based number of the first line of content that
// contains the quoted key `"<pkg>":`, or 0 if there is none.
//
// This is a textual search, not a JSON position. A package listed in more
// than one section always resolves to its first occurrence in the file.
func LineOf(content []byte, pkg string) int {
	return newLineIndex(content).find(pkg)
}
