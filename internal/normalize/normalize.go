// Package normalize canonicalizes free-text hardware identifiers before
// classification and catalog lookup.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var dashes = strings.NewReplacer(
	"\u2010", "-", "\u2011", "-", "\u2012", "-",
	"\u2013", "-", "\u2014", "-", "\u2212", "-",
	"\u00a0", " ", "\u2122", "", "\u00ae", "",
)

// Text lower-cases s, strips diacritics and trademark marks, folds unicode
// dashes to '-', and collapses whitespace.
func Text(s string) string {
	s = dashes.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
