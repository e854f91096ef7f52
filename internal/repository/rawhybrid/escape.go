package rawhybrid

import (
	"strings"
	"unicode"
)

// reserved is the query-syntax punctuation escaped by Escape.
const reserved = `,.<>{}[]"':;!@#$%^&*()-+=~\`

// Escape backslash-escapes reserved punctuation and replaces each whitespace run with one escaped space.
func Escape(q string) string {
	var b strings.Builder
	b.Grow(len(q) + len(q)/4)

	inSpace := false
	for _, r := range q {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteString(`\ `)
			}
			inSpace = true
			continue
		}
		inSpace = false
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Unescape drops the backslash in front of every escaped rune.
// Unescape(Escape(q)) == q whenever q has no whitespace runs longer than one space.
func Unescape(q string) string {
	var b strings.Builder
	b.Grow(len(q))

	escaped := false
	for _, r := range q {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}
