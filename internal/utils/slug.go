package utils

import (
	"strings"
	"unicode"
)

// Slugify turns a title or name into a URL path segment: lowercase ASCII
// letters and digits separated by single hyphens. Whitespace becomes a
// hyphen, every other character is dropped. The result may be empty.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	lastDash := true
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case r == '-' || unicode.IsSpace(r):
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
