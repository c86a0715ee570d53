package ranking

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentFolder strips combining marks so that "Beyoncé" and "beyonce"
// compare equal after lowercasing.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize prepares a name or query for matching: accents folded,
// lowercased, interior commas stripped, whitespace runs collapsed.
func Normalize(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		// Fold failures only happen on malformed UTF-8; match on the
		// raw string rather than dropping the candidate.
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, ",", " ")
	return strings.Join(strings.Fields(folded), " ")
}
