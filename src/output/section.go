package output

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// frameWidth is the number of rule runes after the corner.
const frameWidth = 61

// Section is a titled block of rows inside a left-hand frame.
type Section struct {
	w   io.Writer
	pal palette
}

// NewSection writes "── title ───── note ──" and returns the section.
// An empty note leaves the header plain.
func NewSection(w io.Writer, title, note string, color bool) *Section {
	s := &Section{w: w, pal: palette(color)}

	left := "── " + title + " "
	right := "──"
	if note != "" {
		right = " " + note + " ──"
	}
	fill := max(frameWidth+4-utf8.RuneCountInString(left)-utf8.RuneCountInString(right), 1)

	fmt.Fprintf(w, "\n    %s\n", s.pal.paint(frame, left+strings.Repeat("─", fill)+right))
	return s
}

// Row writes one framed line.
func (s *Section) Row(format string, args ...any) {
	fmt.Fprintf(s.w, "    │ %s\n", fmt.Sprintf(format, args...))
}

// Rule writes a divider.
func (s *Section) Rule() { s.edge('├') }

// Close writes the footer.
func (s *Section) Close() { s.edge('└') }

func (s *Section) edge(corner rune) {
	fmt.Fprintf(s.w, "    %c%s\n", corner, strings.Repeat("─", frameWidth))
}

// Elapsed formats d as a section note.
func Elapsed(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := d / time.Minute
	return fmt.Sprintf("%dm%.1fs", mins, (d - mins*time.Minute).Seconds())
}
