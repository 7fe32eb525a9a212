package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics converts accented text to its plain ASCII-ish form
// ("Milevská" → "Milevska"). Czech agent names and localities are full of
// diacritics, and both URL slugs and merge keys need them folded away.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldText normalizes free text for fuzzy identity comparison: trimmed,
// diacritics stripped, internal whitespace collapsed, lower-cased.
func FoldText(s string) string {
	s = StripDiacritics(strings.TrimSpace(s))
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.ToLower(strings.Join(fields, " "))
}
