// Package ident normalizes database identifiers for comparison.
package ident

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Homogenize returns the canonical comparable form of a table or column
// name: case-folded, with every rune that is not a letter or digit removed.
// "User_Name", "userName" and "USERNAME" all homogenize to "username".
func Homogenize(name string) string {
	folded := cases.Fold().String(name)
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether two names homogenize to the same form.
func Equal(a, b string) bool {
	return Homogenize(a) == Homogenize(b)
}
