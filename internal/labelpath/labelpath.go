// Package labelpath is the single place hierarchical label paths are parsed
// and compared. Both voting and evaluation go through it so that "equal at
// depth d" means the same thing everywhere.
package labelpath

import (
	"fmt"
	"strings"
)

// Separator joins hierarchy levels in external representations,
// e.g. "体育##篮球".
const Separator = "##"

// Path is an ordered label hierarchy, root first. A valid Path has at least
// one level and no empty levels.
type Path []string

// Parse splits an external label string into a Path.
func Parse(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("labelpath: empty label")
	}
	levels := strings.Split(s, Separator)
	for i, lvl := range levels {
		if lvl == "" {
			return nil, fmt.Errorf("labelpath: empty level %d in %q", i+1, s)
		}
		if strings.Contains(lvl, "\t") {
			return nil, fmt.Errorf("labelpath: tab inside level %d in %q", i+1, s)
		}
	}
	return Path(levels), nil
}

// String joins the path with the reserved separator.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// Depth returns the number of hierarchy levels.
func (p Path) Depth() int {
	return len(p)
}

// Truncate returns the path cut to at most depth levels. depth <= 0 means
// the full path.
func (p Path) Truncate(depth int) Path {
	if depth <= 0 || depth >= len(p) {
		return p
	}
	return p[:depth]
}

// EqualAtDepth reports whether a and b agree on their first depth levels.
// depth <= 0 compares the full paths, including their lengths.
func EqualAtDepth(a, b Path, depth int) bool {
	a = a.Truncate(depth)
	b = b.Truncate(depth)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidateText checks that free text is representable in the tab-separated
// record formats: no tabs, no newlines, no reserved separator.
func ValidateText(text string) error {
	switch {
	case strings.ContainsAny(text, "\t\n"):
		return fmt.Errorf("labelpath: text contains tab or newline")
	case strings.Contains(text, Separator):
		return fmt.Errorf("labelpath: text contains reserved separator %q", Separator)
	}
	return nil
}
