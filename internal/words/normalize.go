package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize upper-cases word using the casing rules of lang and strips
// diacritics, so "città" and "CITTA" compare equal.
func Normalize(word, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}

	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.TrimSpace(word),
	)
	if err != nil {
		stripped = strings.TrimSpace(word)
	}

	return cases.Upper(tag).String(stripped)
}
