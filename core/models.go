package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SpeakerType identifies the source of a chat message.
type SpeakerType int

const (
	// SpeakerTypeHuman represents a human user.
	SpeakerTypeHuman SpeakerType = iota + 1
	// SpeakerTypeAI represents an AI assistant.
	SpeakerTypeAI
)

// Conversation is a titled thread of messages.
// Search only looks at Id and Title; the flags belong to the application.
type Conversation struct {
	Id        ID
	Title     string
	Pinned    bool
	Archived  bool
	Deleted   bool // Soft-deleted conversations are hidden from the corpus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Fingerprint returns a content ID identifying the conversation independent of
// its storage ID. Two imports of the same transcript share a fingerprint.
// CreatedAt is taken at microsecond precision, matching what storage keeps.
func (c *Conversation) Fingerprint() ID {
	return IDFromContent(c.Title + "|" + c.CreatedAt.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano))
}

// Message is a single entry in a conversation.
type Message struct {
	Id             ID
	ConversationId ID
	Speaker        SpeakerType
	Text           string
	CreatedAt      time.Time // When the message was originally sent
}

// SearchTerm is one parsed unit of a query.
// Exact terms are quoted phrases matched as substrings; the rest are single
// keywords matched on word boundaries.
type SearchTerm struct {
	Word    string
	Weight  float64
	IsExact bool
}

// SearchResult is a message that matched a query.
type SearchResult struct {
	MessageId      ID
	ConversationId ID
	Snippet        string
	Relevance      float64
	Timestamp      time.Time
}

// SearchStats is a diagnostic snapshot of the searchable corpus.
type SearchStats struct {
	TotalIndexedMessages int
	TotalUniqueWords     int
	IndexSize            int // Sum of raw message text lengths
}
