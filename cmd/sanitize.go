package cmd

import (
	"strings"
	"unicode"
)

// sanitizePath makes a document path safe to echo to a terminal. C0 and C1
// control characters, DEL and the bidirectional embedding, override and
// isolate marks each become '?'.
func sanitizePath(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || isBidiControl(r) {
			return '?'
		}
		return r
	}, s)
}

func isBidiControl(r rune) bool {
	return (r >= '\u202a' && r <= '\u202e') || (r >= '\u2066' && r <= '\u2069')
}
