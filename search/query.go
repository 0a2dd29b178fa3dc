package search

import (
	"regexp"
	"strings"

	"github.com/poiesic/recall/core"
)

const (
	// PhraseWeight is the weight of a quoted phrase.
	PhraseWeight = 2.0
	// KeywordWeight is the weight of a plain keyword.
	KeywordWeight = 1.0
)

var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// ParseQuery turns a raw query into weighted search terms.
// Quoted phrases come first in order of appearance, followed by the keywords
// left over once the phrases are removed. An empty query yields no terms.
func (a *Analyzer) ParseQuery(query string) []core.SearchTerm {
	normalized := Normalize(query)
	if normalized == "" {
		return nil
	}

	var terms []core.SearchTerm
	for _, match := range phrasePattern.FindAllStringSubmatch(normalized, -1) {
		phrase := strings.ToLower(strings.TrimSpace(match[1]))
		if phrase == "" {
			continue
		}
		terms = append(terms, core.SearchTerm{Word: phrase, Weight: PhraseWeight, IsExact: true})
	}

	remainder := phrasePattern.ReplaceAllString(normalized, " ")
	for _, word := range a.ExtractWords(remainder) {
		terms = append(terms, core.SearchTerm{Word: word, Weight: KeywordWeight})
	}
	return terms
}
