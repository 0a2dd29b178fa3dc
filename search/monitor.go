package search

import (
	"log/slog"

	"github.com/poiesic/recall/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryParse(terms []core.SearchTerm)
	MessageScored(message *core.Message, relevance float64)
	ConversationScored(conversation *core.Conversation, titleRelevance, contentRelevance float64)
	Finish(resultCount int)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                                {}
func (n *noopMonitor) AfterQueryParse(_ []core.SearchTerm)                           {}
func (n *noopMonitor) MessageScored(_ *core.Message, _ float64)                      {}
func (n *noopMonitor) ConversationScored(_ *core.Conversation, _ float64, _ float64) {}
func (n *noopMonitor) Finish(_ int)                                                  {}

// LoggingMonitor writes every search step to a logger.
// Non-matching messages are logged at debug level only.
type LoggingMonitor struct {
	logger *slog.Logger
}

var _ SearchMonitor = (*LoggingMonitor)(nil)

// NewLoggingMonitor creates a LoggingMonitor. A nil logger falls back to slog.Default().
func NewLoggingMonitor(logger *slog.Logger) *LoggingMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingMonitor{logger: logger.With("component", "search")}
}

func (m *LoggingMonitor) Start(query string) {
	m.logger.Info("search started", "query", query)
}

func (m *LoggingMonitor) AfterQueryParse(terms []core.SearchTerm) {
	for _, term := range terms {
		m.logger.Info("query term", "word", term.Word, "weight", term.Weight, "exact", term.IsExact)
	}
}

func (m *LoggingMonitor) MessageScored(message *core.Message, relevance float64) {
	if relevance <= 0 {
		m.logger.Debug("message skipped", "messageID", message.Id)
		return
	}
	m.logger.Info("message matched", "messageID", message.Id,
		"conversationID", message.ConversationId, "relevance", relevance)
}

func (m *LoggingMonitor) ConversationScored(conversation *core.Conversation, titleRelevance, contentRelevance float64) {
	m.logger.Info("conversation scored", "conversationID", conversation.Id,
		"title", conversation.Title, "titleRelevance", titleRelevance, "contentRelevance", contentRelevance)
}

func (m *LoggingMonitor) Finish(resultCount int) {
	m.logger.Info("search finished", "results", resultCount)
}
