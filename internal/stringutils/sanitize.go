package stringutils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize drops NUL, C0 and C1 control characters other than tab, newline
// and carriage return, along with invalid UTF-8, so chat text can be stored
// and embedded safely.
func Sanitize(s string) string {
	if utf8.ValidString(s) && strings.IndexFunc(s, isControl) < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError || isControl(r) {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func isControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return r < 32 || r == 127 || (r >= 128 && r <= 159)
}
