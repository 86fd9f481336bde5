// Package sanitize cleans text taken from third-party definition files
// before it is written to the report.
package sanitize

import (
	"strings"
	"unicode"

	"github.com/devops-actions/load-available-actions/internal/core/domain"
)

var entities = strings.NewReplacer("<", "&#60;", ">", "&#62;")

// Sanitize keeps letters, digits, whitespace and the characters " = < >,
// then encodes angle brackets as HTML entities.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if keep(r) {
			b.WriteRune(r)
		}
	}
	return entities.Replace(b.String())
}

// Field sanitizes a metadata value and trims it. An empty result becomes
// domain.Undefined.
func Field(value string) string {
	value = strings.TrimSpace(Sanitize(value))
	if value == "" {
		return domain.Undefined
	}
	return value
}

func keep(r rune) bool {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
		return true
	case r == '"', r == '=', r == '<', r == '>':
		return true
	}
	return false
}
