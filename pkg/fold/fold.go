// Package fold provides the case-insensitive keys used for player matching
// and permission de-duplication.
package fold

import (
	"strings"
	"unicode"
)

// Key returns s with every rune mapped to upper case on its own. The mapping
// is one rune to one rune, so "ß" and "ss" keep distinct keys.
func Key(s string) string {
	return strings.Map(unicode.ToUpper, s)
}

// Equal reports whether a and b are equal ignoring case.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}

// Contains reports whether sub occurs within s ignoring case.
func Contains(s, sub string) bool {
	return strings.Contains(Key(s), Key(sub))
}

// Compare orders a and b by key, then by their raw bytes so that distinct
// spellings of one key still sort deterministically.
func Compare(a, b string) int {
	if c := strings.Compare(Key(a), Key(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
