package search

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snippetCore strips the ellipsis markers from a snippet.
func snippetCore(snippet string) string {
	return strings.TrimSuffix(strings.TrimPrefix(snippet, ellipsis), ellipsis)
}

func TestExtractSnippet_ShortTextPassthrough(t *testing.T) {
	text := "  Paris has great museums  "
	assert.Equal(t, text, ExtractSnippet(text, []core.SearchTerm{keyword("paris")}, 150))

	exact := strings.Repeat("x", 150)
	assert.Equal(t, exact, ExtractSnippet(exact, nil, 150))
}

func TestExtractSnippet_CentersOnMatch(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 20) +
		"the secret keyword lives here " +
		strings.Repeat("consectetur adipiscing elit ", 20)
	terms := []core.SearchTerm{keyword("keyword")}

	snippet := ExtractSnippet(text, terms, 150)

	assert.Contains(t, snippet, "keyword")
	assert.True(t, strings.HasPrefix(snippet, ellipsis), snippet)
	assert.True(t, strings.HasSuffix(snippet, ellipsis), snippet)

	body := snippetCore(snippet)
	assert.Contains(t, text, body)
	assert.LessOrEqual(t, utf8.RuneCountInString(body), 150)
	assert.False(t, strings.HasPrefix(body, " ") || strings.HasSuffix(body, " "))
}

func TestExtractSnippet_MatchAtStart(t *testing.T) {
	text := "Keyword first, then " + strings.Repeat("filler words follow ", 30)
	snippet := ExtractSnippet(text, []core.SearchTerm{keyword("keyword")}, 100)

	assert.True(t, strings.HasPrefix(snippet, "Keyword first"), snippet)
	assert.True(t, strings.HasSuffix(snippet, ellipsis), snippet)
	assert.Contains(t, text, snippetCore(snippet))
}

func TestExtractSnippet_MatchAtEnd(t *testing.T) {
	// Sized so the last window ends exactly at the end of the text.
	text := strings.Repeat("filler words follow ", 30) + "and then finally, keyword"
	snippet := ExtractSnippet(text, []core.SearchTerm{keyword("keyword")}, 100)

	assert.True(t, strings.HasPrefix(snippet, ellipsis), snippet)
	assert.True(t, strings.HasSuffix(snippet, "keyword"), snippet)
	assert.Contains(t, text, snippetCore(snippet))
}

func TestExtractSnippet_PhrasePreferred(t *testing.T) {
	text := strings.Repeat("alpha beta ", 20) + "gamma delta here " + strings.Repeat("zeta eta ", 20)
	terms := []core.SearchTerm{phrase("gamma delta"), keyword("alpha")}

	snippet := ExtractSnippet(text, terms, 60)
	assert.Contains(t, snippet, "gamma delta")
}

func TestExtractSnippet_PhraseAcrossLineBreak(t *testing.T) {
	text := strings.Repeat("filler ", 40) + "quick\nbrown fox " + strings.Repeat("tail ", 40)
	terms := NewAnalyzer(nil).ParseQuery(`"quick brown"`)
	require.Len(t, terms, 1)
	require.Positive(t, Score(text, terms))

	snippet := ExtractSnippet(text, terms, 150)
	assert.Contains(t, snippet, "quick\nbrown")
	assert.Contains(t, text, snippetCore(snippet))
}

func TestExtractSnippet_NoMatchUsesOpening(t *testing.T) {
	text := strings.Repeat("nothing to see here ", 20)
	snippet := ExtractSnippet(text, []core.SearchTerm{keyword("absent")}, 50)

	assert.True(t, strings.HasPrefix(snippet, "nothing"), snippet)
	assert.True(t, strings.HasSuffix(snippet, ellipsis), snippet)
}

func TestExtractSnippet_ContainmentProperty(t *testing.T) {
	texts := []string{
		strings.Repeat("ünïcödé wörds and paris ", 15),
		strings.Repeat("x", 400),
		strings.Repeat("a b ", 120) + "paris",
		"paris " + strings.Repeat("\t\nspaced    out ", 40),
	}
	terms := NewAnalyzer(nil).ParseQuery(`paris "wörds and"`)

	for _, text := range texts {
		for _, length := range []int{1, 7, 40, 150} {
			snippet := ExtractSnippet(text, terms, length)
			require.NotPanics(t, func() { _ = snippetCore(snippet) })
			assert.Contains(t, text, snippetCore(snippet), "length %d", length)
		}
	}
}

func TestExtractSnippet_DefaultLength(t *testing.T) {
	text := strings.Repeat("word ", 100)
	assert.Equal(t, ExtractSnippet(text, nil, DefaultSnippetLength), ExtractSnippet(text, nil, 0))
}
