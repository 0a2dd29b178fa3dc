package importer

import (
	"fmt"
	"io"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/poiesic/recall/core"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Transcript is the JSON export format accepted by the importer.
type Transcript struct {
	Conversations []TranscriptConversation `json:"conversations"`
}

// TranscriptConversation is one conversation in a transcript.
type TranscriptConversation struct {
	Title     string              `json:"title"`
	Pinned    bool                `json:"pinned,omitempty"`
	Archived  bool                `json:"archived,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Messages  []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is one message in a transcript conversation.
// Speaker accepts "human"/"user" and "ai"/"assistant"/"bot".
type TranscriptMessage struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeTranscript reads a transcript from r.
func DecodeTranscript(r io.Reader) (*Transcript, error) {
	var transcript Transcript
	if err := json.NewDecoder(r).Decode(&transcript); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTranscript, err)
	}
	return &transcript, nil
}

// LoadTranscript reads a transcript file.
func LoadTranscript(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTranscript(f)
}

// toCore converts a transcript conversation into domain records.
// A missing conversation timestamp falls back to the earliest message
// timestamp; messages without one are spaced a microsecond apart after the
// conversation start so their order is kept.
func (tc *TranscriptConversation) toCore() (*core.Conversation, []*core.Message, error) {
	createdAt := tc.CreatedAt
	if createdAt.IsZero() {
		for _, m := range tc.Messages {
			if !m.CreatedAt.IsZero() && (createdAt.IsZero() || m.CreatedAt.Before(createdAt)) {
				createdAt = m.CreatedAt
			}
		}
	}
	if createdAt.IsZero() {
		return nil, nil, fmt.Errorf("%w: %q", ErrMissingCreatedAt, tc.Title)
	}
	createdAt = createdAt.UTC().Truncate(time.Microsecond)

	conversation := &core.Conversation{
		Title:     tc.Title,
		Pinned:    tc.Pinned,
		Archived:  tc.Archived,
		CreatedAt: createdAt,
	}
	if err := core.ValidateConversation(conversation); err != nil {
		return nil, nil, err
	}

	messages := make([]*core.Message, 0, len(tc.Messages))
	for i, m := range tc.Messages {
		speaker, err := core.ParseSpeakerType(m.Speaker)
		if err != nil {
			return nil, nil, fmt.Errorf("message %d: %w", i, err)
		}
		timestamp := m.CreatedAt
		if timestamp.IsZero() {
			timestamp = createdAt.Add(time.Duration(i) * time.Microsecond)
		}
		message := &core.Message{
			Speaker:   speaker,
			Text:      m.Text,
			CreatedAt: timestamp.UTC().Truncate(time.Microsecond),
		}
		if err := core.ValidateMessage(message); err != nil {
			return nil, nil, fmt.Errorf("message %d: %w", i, err)
		}
		messages = append(messages, message)
	}
	return conversation, messages, nil
}
