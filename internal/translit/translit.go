// Package translit reduces arbitrary text to printable ASCII.
//
// Latin letters with diacritics lose their marks (é -> e), a small table covers
// letters that have no decomposition (ø, ł, ß, æ), and anything left outside
// ASCII is dropped.
package translit

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letters without a canonical decomposition.
var letters = strings.NewReplacer(
	"ß", "ss", "ẞ", "SS",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"ø", "o", "Ø", "O",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "Th",
	"ı", "i",
	"µ", "u",
	"°", "",
)

var nonASCII = runes.Predicate(func(r rune) bool {
	return r > unicode.MaxASCII
})

// ASCII returns s with every rune mapped into the ASCII range.
// ASCII input is returned unchanged.
func ASCII(s string) string {
	if isASCII(s) {
		return s
	}

	s = letters.Replace(s)

	// A fresh chain per call: transform.Chain keeps internal state.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(nonASCII))
	out, _, err := transform.String(t, s)
	if err != nil {
		// The chain only fails on invalid UTF-8; fall back to plain filtering.
		return strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII || r == unicode.ReplacementChar {
				return -1
			}
			return r
		}, s)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
