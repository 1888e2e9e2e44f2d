// Package textsim computes free-text similarity between a buy request and
// a listing using keyword overlap.
package textsim

import (
	"strings"
	"unicode/utf8"
)

// minTokenLength filters out short tokens, which suppresses stop-words
// without carrying a stop-word list.
const minTokenLength = 4

// Similarity returns a normalized overlap score in [0,1] for two free-text
// blobs. Both inputs are lower-cased and tokenized on whitespace; tokens
// shorter than four characters are discarded; the result is
// |intersection| / max(|a|, |b|). Empty token sets on both sides yield 0.
//
// The function is pure and symmetric: Similarity(a, b) == Similarity(b, a).
func Similarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	total := len(setA)
	if len(setB) > total {
		total = len(setB)
	}
	if total == 0 {
		return 0
	}

	overlap := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(total)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		// Rune count, not bytes: listings and requests mix English and
		// Amharic text.
		if utf8.RuneCountInString(tok) < minTokenLength {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}
