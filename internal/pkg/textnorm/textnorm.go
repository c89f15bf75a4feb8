// Package textnorm normalizes free-text product fields for keyword
// matching and display. Supplier listings arrive with mixed casing,
// accented characters, and noisy whitespace.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics strips combining marks via NFD normalization, so that
// "Étui Câble" matches the keyword "cable".
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// FoldTitle lowercases a product title, strips diacritics, and collapses
// runs of whitespace. The result is the canonical form keyword matchers
// operate on.
func FoldTitle(title string) string {
	s := RemoveDiacritics(title)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
