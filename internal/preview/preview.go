// Package preview shortens free text for log fields and error messages.
package preview

import "unicode/utf8"

// Text cuts s to at most max bytes, backing off to a rune boundary so the
// result stays valid UTF-8. A cut string ends with "…".
func Text(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 0 {
		return "…"
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
