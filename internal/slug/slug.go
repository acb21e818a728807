// Package slug derives URL-safe identifiers from post titles.
package slug

import (
	"strings"
	"unicode"
)

// Make converts a human-readable title into a URL-safe slug. The
// transformation is total and deterministic: trim, lowercase, whitespace
// runs become a single hyphen, anything that is not alphanumeric or a
// hyphen is dropped, hyphen runs collapse, edge hyphens are stripped.
// Uniqueness across a collection is not Make's concern.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			b.WriteByte('-')
		case r == '-' || unicode.IsLetter(r) && r < 128 || unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}
