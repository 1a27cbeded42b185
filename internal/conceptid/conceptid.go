// =============================================================================
// SDMX to DDF Converter - Concept Identifiers
// =============================================================================
//
// Every code that ends up as a DDF key (indicator ids, location ids, drill-up
// parent codes) passes through Canonicalize, so that the concept, entity and
// datapoint files agree on their keys.
//
// RULES:
//   1. Trim surrounding whitespace
//   2. Decompose (NFKD) and drop combining marks ("Côte" -> "Cote")
//   3. Lowercase
//   4. Collapse every run of characters outside [a-z0-9] into one "_"
//   5. Trim leading and trailing "_"
//
// =============================================================================

package conceptid

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator replaces every run of non-alphanumeric characters.
const Separator = '_'

// Canonicalize converts free text into a DDF concept id.
//
// The result is stable and idempotent:
//
//	Canonicalize(Canonicalize(s)) == Canonicalize(s)
//
// Two different inputs may map to the same id; callers that care must check.
func Canonicalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// A fresh transformer per call; transform.Chain values are not safe
	// for concurrent use.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = cases.Lower(language.Und).String(folded)

	var b strings.Builder
	b.Grow(len(folded))

	pending := false
	for _, r := range folded {
		if isIDRune(r) {
			if pending && b.Len() > 0 {
				b.WriteRune(Separator)
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	return b.String()
}

// IsCanonical reports whether s is already in canonical form.
func IsCanonical(s string) bool {
	return Canonicalize(s) == s
}

func isIDRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
