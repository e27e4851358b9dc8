// Package slug derives canonical path-safe identifiers from display strings.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make turns a display string into a lower-case identifier suitable as a
// path segment: diacritics are stripped, any run of characters outside
// [a-z0-9] collapses to a single hyphen, and leading/trailing hyphens are
// removed. It never fails; empty or all-punctuation input yields "".
// Uniqueness is the caller's problem.
func Make(title string) string {
	s := strings.ToLower(title)

	// Decompose and drop combining marks so "Café" slugs as "cafe".
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
