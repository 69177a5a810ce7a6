package encoder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeText applies NFKC normalization and collapses runs of whitespace
// to single spaces, so full-width and half-width variants of the same query
// embed identically.
func normalizeText(text string) string {
	text = norm.NFKC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
