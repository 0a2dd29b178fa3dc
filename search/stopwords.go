package search

import "strings"

// StopWords is an immutable set of words excluded from tokenization.
// Build one with DefaultStopWords or NewStopWords and share it by reference.
type StopWords struct {
	words map[string]struct{}
}

// defaultStopWords are common English function words: articles,
// conjunctions, prepositions, pronouns and auxiliary verbs.
var defaultStopWords = []string{
	"a", "an", "the",
	"and", "or", "but", "of", "at", "by", "for", "with", "to", "from",
	"in", "on", "as", "into", "about",
	"i", "me", "my", "we", "us", "our", "you", "your", "he", "him", "his",
	"she", "her", "it", "its", "they", "them", "their", "this", "that",
	"these", "those", "what", "which", "who",
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has",
	"had", "do", "does", "did", "will", "would", "can", "could", "should",
}

// DefaultStopWords returns the built-in English stop-word set.
func DefaultStopWords() *StopWords {
	return NewStopWords(defaultStopWords...)
}

// NewStopWords builds a stop-word set. Words are lower-cased and trimmed.
func NewStopWords(words ...string) *StopWords {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			set[word] = struct{}{}
		}
	}
	return &StopWords{words: set}
}

// Contains reports whether word (already lower-cased) is a stop word.
func (s *StopWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

// Len returns the number of words in the set.
func (s *StopWords) Len() int {
	return len(s.words)
}
