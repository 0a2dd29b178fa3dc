package storage

import (
	"context"

	"github.com/poiesic/recall/core"
)

// Corpus is the read-only view of conversations that search runs against.
// Implementations must return a stable snapshot for the duration of a call.
type Corpus interface {
	// GetAllConversations returns every live (not deleted) conversation.
	GetAllConversations(ctx context.Context) ([]*core.Conversation, error)

	// GetMessagesForConversation returns the messages of a conversation,
	// ordered by creation time (oldest first).
	// Returns an empty slice for unknown conversations.
	GetMessagesForConversation(ctx context.Context, conversationID core.ID) ([]*core.Message, error)
}

// ConversationRepository provides operations for managing conversations and their messages.
// Implementations must be thread-safe and support concurrent access.
type ConversationRepository interface {
	Corpus

	// AddConversations adds one or more conversations to storage.
	// Always generates new IDs from a sequence.
	// Sets CreatedAt if zero and UpdatedAt to the insertion time.
	// Returns the conversations with IDs and timestamps populated.
	AddConversations(ctx context.Context, conversations ...*core.Conversation) ([]*core.Conversation, error)

	// UpdateConversations updates existing conversations.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any conversation doesn't exist.
	UpdateConversations(ctx context.Context, conversations ...*core.Conversation) ([]*core.Conversation, error)

	// DeleteConversations soft-deletes conversations by their IDs.
	// Deleted conversations are no longer returned by GetAllConversations.
	// Returns ErrNotFound if any conversation doesn't exist.
	DeleteConversations(ctx context.Context, ids ...core.ID) error

	// GetConversation retrieves a single conversation by ID, deleted or not.
	// Returns ErrNotFound if the conversation doesn't exist.
	GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error)

	// FindConversationByFingerprint looks up a conversation by its content fingerprint.
	// Returns ErrNotFound if no conversation has that fingerprint.
	FindConversationByFingerprint(ctx context.Context, fingerprint core.ID) (*core.Conversation, error)

	// AddMessages appends messages to their conversations.
	// Every message must reference an existing conversation, otherwise ErrNotFound.
	// Sets CreatedAt if zero.
	AddMessages(ctx context.Context, messages ...*core.Message) ([]*core.Message, error)

	// GetMessage retrieves a single message by ID.
	// Returns ErrNotFound if the message doesn't exist.
	GetMessage(ctx context.Context, id core.ID) (*core.Message, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}
