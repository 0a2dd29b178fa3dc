package search

import (
	"strings"

	"github.com/poiesic/recall/core"
)

const (
	// DefaultSnippetLength is the snippet window in characters.
	DefaultSnippetLength = 150
	// SnippetStepDivisor sets the window step as a fraction of its length.
	SnippetStepDivisor = 4

	ellipsis             = "..."
	snippetBoundarySlack = 20
	phraseWindowBonus    = 10
)

// ExtractSnippet returns the window of text of at most maxLength characters
// that best covers the terms. Text that already fits is returned unchanged.
// Cut sides are moved to a nearby space and marked with "...".
func ExtractSnippet(text string, terms []core.SearchTerm, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSnippetLength
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}

	words := make([]string, len(terms))
	for i, term := range terms {
		words[i] = strings.ToLower(term.Word)
	}

	step := max(maxLength/SnippetStepDivisor, 1)
	bestStart, bestScore := 0, 0
	for start := 0; start+maxLength <= len(runes); start += step {
		// Windows are cut from the original; matching sees them normalized.
		score := windowScore(strings.ToLower(Normalize(string(runes[start:start+maxLength]))), terms, words)
		if score > bestScore {
			bestScore = score
			bestStart = start
		}
	}

	end := bestStart + maxLength
	window := runes[bestStart:end]
	if bestStart > 0 {
		if i := indexRune(window, ' '); i > 0 && i < snippetBoundarySlack {
			window = window[i+1:]
		}
	}
	if end < len(runes) {
		if i := lastIndexRune(window, ' '); i >= 0 && i > len(window)-snippetBoundarySlack {
			window = window[:i]
		}
	}

	snippet := strings.TrimSpace(string(window))
	if bestStart > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(runes) {
		snippet += ellipsis
	}
	return strings.TrimSpace(snippet)
}

// windowScore counts phrase hits and whole-word keyword hits in a normalized,
// lower-cased window.
func windowScore(window string, terms []core.SearchTerm, words []string) int {
	score := 0
	for i, term := range terms {
		if words[i] == "" {
			continue
		}
		if term.IsExact {
			if strings.Contains(window, words[i]) {
				score += phraseWindowBonus
			}
			continue
		}
		score += len(wordOccurrences(window, words[i]))
	}
	return score
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}

func lastIndexRune(runes []rune, target rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}
