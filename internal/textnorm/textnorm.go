// Package textnorm normalizes user supplied text before it reaches the
// classifier or the recommendation query.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Text performs NFKC normalization, trims surrounding whitespace and drops
// control characters other than newline and tab.
func Text(s string) string {
	s = strings.TrimSpace(norm.NFKC.String(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// Field normalizes a short query value: NFKC, collapsed inner whitespace,
// lower case.
func Field(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	// Caser is stateful, one per call.
	return cases.Lower(language.Und).String(s)
}

// Enum normalizes a value that is compared against an enum vocabulary such
// as moods or regions. "North America" and "north-america" both become
// "north_america".
func Enum(s string) string {
	s = Field(s)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, s)
}
