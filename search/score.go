package search

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/recall/core"
)

// Scoring constants
const (
	lengthNormBase = 100.0
	positionDecay  = 0.5
)

// Score computes the relevance of text against the given terms.
// The result is never negative and is zero when nothing matches.
//
// Exact phrases contribute their weight when contained anywhere in the text.
// Keywords contribute weight*(1+ln(occurrences)), scaled down the later the
// first occurrence appears. A positive total is boosted for shorter texts.
func Score(text string, terms []core.SearchTerm) float64 {
	if len(terms) == 0 {
		return 0
	}
	normalized := strings.ToLower(Normalize(text))
	if normalized == "" {
		return 0
	}
	textLength := utf8.RuneCountInString(normalized)

	var total float64
	for _, term := range terms {
		total += termScore(normalized, textLength, term)
	}

	if total > 0 {
		total *= 1 + lengthNormBase/(lengthNormBase+float64(textLength))
	}
	return total
}

// termScore scores a single term against lower-cased, normalized text.
func termScore(text string, textLength int, term core.SearchTerm) float64 {
	word := strings.ToLower(term.Word)
	if word == "" || term.Weight <= 0 {
		return 0
	}

	if term.IsExact {
		if strings.Contains(text, word) {
			return term.Weight
		}
		return 0
	}

	positions := wordOccurrences(text, word)
	if len(positions) == 0 {
		return 0
	}

	frequency := 1 + math.Log(float64(len(positions)))
	firstPos := utf8.RuneCountInString(text[:positions[0]])
	positionBoost := 1 - float64(firstPos)/float64(textLength)*positionDecay
	return term.Weight * frequency * positionBoost
}
