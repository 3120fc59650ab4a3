package facematch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics folds accented letters to their base form ("Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	// Transformers keep state, so the chain is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeLabel is the comparison key for worker names: lower case, no
// diacritics, separators turned into single spaces.
func NormalizeLabel(label string) string {
	folded := strings.Map(func(r rune) rune {
		if r == '-' || r == '_' || r == '.' {
			return ' '
		}
		return unicode.ToLower(r)
	}, RemoveDiacritics(label))
	return strings.Join(strings.Fields(folded), " ")
}

// SameLabel reports whether two labels refer to the same person.
func SameLabel(a, b string) bool {
	return NormalizeLabel(a) == NormalizeLabel(b)
}
