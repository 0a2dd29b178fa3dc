package search

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

const (
	// DefaultMessageLimit caps SearchMessages when no positive limit is given.
	DefaultMessageLimit = 50
	// DefaultConversationLimit caps SearchConversations when no positive limit is given.
	DefaultConversationLimit = 20
	// DefaultSuggestionLimit caps GetSearchSuggestions when no positive limit is given.
	DefaultSuggestionLimit = 10

	// TitleWeight multiplies the title score of a conversation.
	TitleWeight = 2.0
	// SuggestionMessageWindow is how many recent messages per conversation feed suggestions.
	SuggestionMessageWindow = 10
	// MinSuggestionLength is the shortest partial query that yields suggestions.
	MinSuggestionLength = 2

	// Relevance values closer than this are ordered by recency.
	relevanceEpsilon = 0.001
)

// Engine ranks messages and conversations of a corpus against free-text queries.
// Every call rescans the corpus, so results always reflect its current contents.
type Engine struct {
	corpus        storage.Corpus
	analyzer      *Analyzer
	snippetLength int
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithStopWords replaces the default stop-word set.
func WithStopWords(stopWords *StopWords) Option {
	return func(e *Engine) error {
		if stopWords == nil || stopWords.Len() == 0 {
			return ErrStopWordsRequired
		}
		e.analyzer = NewAnalyzer(stopWords)
		return nil
	}
}

// WithSnippetLength sets the maximum snippet length in characters.
// Default is DefaultSnippetLength.
func WithSnippetLength(length int) Option {
	return func(e *Engine) error {
		if length < 1 {
			return ErrInvalidSnippetLength
		}
		e.snippetLength = length
		return nil
	}
}

// NewEngine creates a new search engine over corpus.
// A nil corpus is allowed; every operation then returns empty results.
func NewEngine(corpus storage.Corpus, opts ...Option) (*Engine, error) {
	e := &Engine{
		corpus:        corpus,
		analyzer:      NewAnalyzer(DefaultStopWords()),
		snippetLength: DefaultSnippetLength,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Analyzer returns the analyzer the engine parses queries with.
func (e *Engine) Analyzer() *Analyzer {
	return e.analyzer
}

// SearchMessages returns up to limit messages matching query, best first.
// Results whose relevance differs by less than 0.001 are ordered newest first.
func (e *Engine) SearchMessages(ctx context.Context, query string, limit int) []*core.SearchResult {
	return e.SearchMessagesWithMonitor(ctx, query, limit, nil)
}

// SearchMessagesWithMonitor is SearchMessages with a monitor receiving
// callbacks at each stage of the search.
func (e *Engine) SearchMessagesWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) []*core.SearchResult {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	monitor.Start(query)
	results := []*core.SearchResult{}

	terms := e.analyzer.ParseQuery(query)
	if len(terms) == 0 {
		monitor.Finish(0)
		return results
	}
	monitor.AfterQueryParse(terms)

	for _, conversation := range e.conversations(ctx) {
		messages, ok := e.messages(ctx, conversation.Id)
		if !ok {
			continue
		}
		for _, message := range messages {
			relevance := Score(message.Text, terms)
			monitor.MessageScored(message, relevance)
			if relevance <= 0 {
				continue
			}
			results = append(results, &core.SearchResult{
				MessageId:      message.Id,
				ConversationId: message.ConversationId,
				Snippet:        ExtractSnippet(message.Text, terms, e.snippetLength),
				Relevance:      relevance,
				Timestamp:      message.CreatedAt,
			})
		}
	}

	slices.SortStableFunc(results, compareResults)
	if len(results) > limit {
		results = results[:limit]
	}

	monitor.Finish(len(results))
	return results
}

// compareResults orders by relevance descending, falling back to newest
// first when relevance is within relevanceEpsilon. The epsilon makes the
// tie relation non-transitive (1.0000 ~ 1.0006 ~ 1.0012, yet 1.0012 outranks 1.0000),
// so a chain of near-equal scores is ordered by the stable sort's traversal.
func compareResults(a, b *core.SearchResult) int {
	if math.Abs(a.Relevance-b.Relevance) < relevanceEpsilon {
		return b.Timestamp.Compare(a.Timestamp)
	}
	if a.Relevance > b.Relevance {
		return -1
	}
	return 1
}

// SearchConversations returns up to limit conversations matching query, best first.
// A conversation scores twice its title relevance plus the mean relevance of its messages.
func (e *Engine) SearchConversations(ctx context.Context, query string, limit int) []*core.Conversation {
	return e.SearchConversationsWithMonitor(ctx, query, limit, nil)
}

// SearchConversationsWithMonitor is SearchConversations with a monitor
// receiving callbacks at each stage of the search.
func (e *Engine) SearchConversationsWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) []*core.Conversation {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if limit <= 0 {
		limit = DefaultConversationLimit
	}

	monitor.Start(query)

	terms := e.analyzer.ParseQuery(query)
	if len(terms) == 0 {
		monitor.Finish(0)
		return []*core.Conversation{}
	}
	monitor.AfterQueryParse(terms)

	type scored struct {
		conversation *core.Conversation
		relevance    float64
	}
	var matches []scored

	for _, conversation := range e.conversations(ctx) {
		titleRelevance := Score(conversation.Title, terms) * TitleWeight

		var contentRelevance float64
		if messages, ok := e.messages(ctx, conversation.Id); ok && len(messages) > 0 {
			var sum float64
			for _, message := range messages {
				relevance := Score(message.Text, terms)
				monitor.MessageScored(message, relevance)
				sum += relevance
			}
			contentRelevance = sum / float64(len(messages))
		}

		monitor.ConversationScored(conversation, titleRelevance, contentRelevance)
		if total := titleRelevance + contentRelevance; total > 0 {
			matches = append(matches, scored{conversation: conversation, relevance: total})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		switch {
		case a.relevance > b.relevance:
			return -1
		case a.relevance < b.relevance:
			return 1
		default:
			return 0
		}
	})

	results := make([]*core.Conversation, 0, min(len(matches), limit))
	for _, match := range matches {
		if len(results) == limit {
			break
		}
		results = append(results, match.conversation)
	}

	monitor.Finish(len(results))
	return results
}

// GetSearchSuggestions completes a partial word from conversation titles and
// the most recent messages of each conversation. Shorter completions come
// first, then alphabetical order.
func (e *Engine) GetSearchSuggestions(ctx context.Context, partial string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	suggestions := []string{}

	prefix := strings.ToLower(Normalize(partial))
	if utf8.RuneCountInString(prefix) < MinSuggestionLength {
		return suggestions
	}
	if len(e.analyzer.ParseQuery(partial)) == 0 {
		return suggestions
	}

	capacity := 2 * limit
	candidates := make(map[string]struct{}, capacity)
	collect := func(text string) bool {
		for _, word := range e.analyzer.ExtractWords(text) {
			if len(word) > len(prefix) && strings.HasPrefix(word, prefix) {
				candidates[word] = struct{}{}
				if len(candidates) >= capacity {
					return false
				}
			}
		}
		return true
	}

scan:
	for _, conversation := range e.conversations(ctx) {
		if !collect(conversation.Title) {
			break
		}
		messages, ok := e.messages(ctx, conversation.Id)
		if !ok {
			continue
		}
		// Messages arrive oldest first
		for _, message := range messages[max(len(messages)-SuggestionMessageWindow, 0):] {
			if !collect(message.Text) {
				break scan
			}
		}
	}

	for word := range candidates {
		suggestions = append(suggestions, word)
	}
	slices.SortFunc(suggestions, func(a, b string) int {
		if la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b); la != lb {
			return la - lb
		}
		return strings.Compare(a, b)
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// GetSearchStats rescans the corpus and reports its size.
func (e *Engine) GetSearchStats(ctx context.Context) core.SearchStats {
	var stats core.SearchStats
	words := make(map[string]struct{})

	for _, conversation := range e.conversations(ctx) {
		messages, ok := e.messages(ctx, conversation.Id)
		if !ok {
			continue
		}
		for _, message := range messages {
			stats.TotalIndexedMessages++
			stats.IndexSize += utf8.RuneCountInString(message.Text)
			for _, word := range e.analyzer.ExtractWords(message.Text) {
				words[word] = struct{}{}
			}
		}
	}

	stats.TotalUniqueWords = len(words)
	return stats
}

// Helper methods

// conversations lists the corpus, logging and swallowing read errors.
func (e *Engine) conversations(ctx context.Context) []*core.Conversation {
	if e.corpus == nil {
		return nil
	}
	conversations, err := e.corpus.GetAllConversations(ctx)
	if err != nil {
		e.logger.Warn("error listing conversations", "err", err)
		return nil
	}
	return conversations
}

// messages loads one conversation's messages, logging and swallowing read errors.
func (e *Engine) messages(ctx context.Context, conversationID core.ID) ([]*core.Message, bool) {
	messages, err := e.corpus.GetMessagesForConversation(ctx, conversationID)
	if err != nil {
		e.logger.Warn("error loading messages, skipping conversation", "conversationID", conversationID, "err", err)
		return nil, false
	}
	return messages, true
}
