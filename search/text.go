package search

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/segment"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Normalize strips HTML-like tags and collapses whitespace runs to single spaces.
// Tags are replaced by a space so that adjacent words stay separate.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	if strings.IndexByte(text, '<') >= 0 {
		text = tagPattern.ReplaceAllString(text, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}

// Analyzer turns text into tokens and queries into search terms.
// It is safe for concurrent use.
type Analyzer struct {
	stopWords *StopWords
}

// NewAnalyzer creates an Analyzer filtering the given stop words.
// A nil set falls back to DefaultStopWords.
func NewAnalyzer(stopWords *StopWords) *Analyzer {
	if stopWords == nil {
		stopWords = DefaultStopWords()
	}
	return &Analyzer{stopWords: stopWords}
}

// ExtractWords splits text on Unicode word boundaries and returns the lower-cased
// words, in order and with duplicates, that are longer than one character and
// are not stop words.
func (a *Analyzer) ExtractWords(text string) []string {
	if text == "" {
		return nil
	}

	var words []string
	segmenter := segment.NewWordSegmenterDirect([]byte(text))
	for segmenter.Segment() {
		// Punctuation, whitespace and symbols
		if segmenter.Type() == segment.None {
			continue
		}
		word := strings.ToLower(string(segmenter.Bytes()))
		if utf8.RuneCountInString(word) <= 1 || a.stopWords.Contains(word) {
			continue
		}
		words = append(words, word)
	}
	return words
}

// isWordRune reports whether r may be part of a word for boundary matching.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// wordOccurrences returns the byte offsets of every whole-word occurrence of
// word in text. Both must already be lower-cased.
func wordOccurrences(text, word string) []int {
	if word == "" {
		return nil
	}

	var positions []int
	for offset := 0; offset+len(word) <= len(text); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(word)

		if wordBoundaryBefore(text, start) && wordBoundaryAfter(text, end) {
			positions = append(positions, start)
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return positions
}

func wordBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func wordBoundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}
