package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	convSeq *badger.Sequence
	msgSeq  *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	convSeq, err := backend.GetSequence(conversationIDSeq)
	if err != nil {
		return nil, err
	}

	msgSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		convSeq.Release()
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		convSeq: convSeq,
		msgSeq:  msgSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ConversationRepository) Close() error {
	if err := r.msgSeq.Release(); err != nil {
		return err
	}
	return r.convSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddConversations adds one or more conversations to storage.
func (r *ConversationRepository) AddConversations(ctx context.Context, conversations ...*core.Conversation) ([]*core.Conversation, error) {
	for _, conversation := range conversations {
		if err := core.ValidateConversation(conversation); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, conversation := range conversations {
			id, err := nextID(r.convSeq)
			if err != nil {
				return err
			}
			conversation.Id = id
			if conversation.CreatedAt.IsZero() {
				conversation.CreatedAt = now
			}
			conversation.UpdatedAt = now

			if err := tx.Set(makeConversationKey(id), storage.MarshalConversation(conversation)); err != nil {
				return err
			}
			if err := tx.Set(makeFingerprintKey(conversation.Fingerprint()), storage.MarshalID(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return conversations, err
}

// UpdateConversations updates existing conversations.
func (r *ConversationRepository) UpdateConversations(ctx context.Context, conversations ...*core.Conversation) ([]*core.Conversation, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, conversation := range conversations {
			key := makeConversationKey(conversation.Id)

			// Read old conversation to detect fingerprint changes
			old, err := readConversation(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			conversation.UpdatedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
				return err
			}

			if old.Fingerprint() != conversation.Fingerprint() {
				if err := tx.Delete(makeFingerprintKey(old.Fingerprint())); err != nil {
					return err
				}
				if err := tx.Set(makeFingerprintKey(conversation.Fingerprint()), storage.MarshalID(conversation.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return conversations, err
}

// DeleteConversations marks conversations as deleted.
// Messages are kept so that an undelete restores them.
func (r *ConversationRepository) DeleteConversations(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		for _, id := range ids {
			key := makeConversationKey(id)
			conversation, err := readConversation(tx, key)
			if err != nil {
				return err
			}
			if conversation == nil {
				return storage.ErrNotFound
			}

			conversation.Deleted = true
			conversation.UpdatedAt = now
			if err := tx.Set(key, storage.MarshalConversation(conversation)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetConversation retrieves a single conversation by ID.
func (r *ConversationRepository) GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readConversation(tx, makeConversationKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// FindConversationByFingerprint looks up a conversation through the fingerprint index.
func (r *ConversationRepository) FindConversationByFingerprint(ctx context.Context, fingerprint core.ID) (*core.Conversation, error) {
	var result *core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFingerprintKey(fingerprint))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readConversation(tx, makeConversationKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetAllConversations returns every conversation that is not deleted, in ID order.
func (r *ConversationRepository) GetAllConversations(ctx context.Context) ([]*core.Conversation, error) {
	var results []*core.Conversation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(conversationPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var conversation *core.Conversation
			err := iter.Item().Value(func(val []byte) error {
				var err error
				conversation, err = storage.UnmarshalConversation(val)
				return err
			})
			if err != nil {
				return err
			}
			if conversation == nil || conversation.Deleted {
				continue
			}
			results = append(results, conversation)
		}
		return nil
	}, false)

	return results, err
}

// AddMessages appends messages to existing conversations.
func (r *ConversationRepository) AddMessages(ctx context.Context, messages ...*core.Message) ([]*core.Message, error) {
	for _, message := range messages {
		if err := core.ValidateMessage(message); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		known := make(map[core.ID]bool)
		now := time.Now().UTC()
		for _, message := range messages {
			if !known[message.ConversationId] {
				conversation, err := readConversation(tx, makeConversationKey(message.ConversationId))
				if err != nil {
					return err
				}
				if conversation == nil {
					return fmt.Errorf("%w: conversation %d", storage.ErrNotFound, message.ConversationId)
				}
				known[message.ConversationId] = true
			}

			id, err := nextID(r.msgSeq)
			if err != nil {
				return err
			}
			message.Id = id
			if message.CreatedAt.IsZero() {
				message.CreatedAt = now
			}

			key := makeMessageKey(message.ConversationId, message.CreatedAt, message.Id)
			if err := tx.Set(key, storage.MarshalMessage(message)); err != nil {
				return err
			}
			if err := tx.Set(makeMessageIDKey(message.Id), key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return messages, err
}

// GetMessage retrieves a single message by ID.
func (r *ConversationRepository) GetMessage(ctx context.Context, id core.ID) (*core.Message, error) {
	var result *core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeMessageIDKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		result, err = readMessage(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetMessagesForConversation returns a conversation's messages, oldest first.
func (r *ConversationRepository) GetMessagesForConversation(ctx context.Context, conversationID core.ID) ([]*core.Message, error) {
	results := []*core.Message{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeConversationMessagesPrefix(conversationID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var message *core.Message
			err := iter.Item().Value(func(val []byte) error {
				var err error
				message, err = storage.UnmarshalMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, message)
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// nextID draws a non-zero ID from a sequence.
func nextID(seq *badger.Sequence) (core.ID, error) {
	id, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if id == 0 {
		id, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(id), nil
}

// readConversation reads a conversation from the transaction.
// Returns nil, nil if the key does not exist.
func readConversation(tx *badger.Txn, key []byte) (*core.Conversation, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var conversation *core.Conversation
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		conversation, unmarshalErr = storage.UnmarshalConversation(val)
		return unmarshalErr
	})
	return conversation, err
}

// readMessage reads a message from the transaction.
// Returns nil, nil if the key does not exist.
func readMessage(tx *badger.Txn, key []byte) (*core.Message, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var message *core.Message
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		message, unmarshalErr = storage.UnmarshalMessage(val)
		return unmarshalErr
	})
	return message, err
}
