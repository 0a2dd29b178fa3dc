package storage

import (
	"testing"
	"time"

	"github.com/poiesic/recall/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalMessage([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalConversation([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalMessage(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name    string
		message *core.Message
	}{
		{
			name: "human message",
			message: &core.Message{
				Id:             1,
				ConversationId: 9,
				Speaker:        core.SpeakerTypeHuman,
				Text:           "Let's plan our trip to Paris",
				CreatedAt:      now,
			},
		},
		{
			name: "unicode text",
			message: &core.Message{
				Id:             2,
				ConversationId: 9,
				Speaker:        core.SpeakerTypeAI,
				Text:           "Ça marche, on part à l'aube — 東京 too",
				CreatedAt:      now.Add(-time.Hour),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalMessage(MarshalMessage(tt.message))
			require.NoError(t, err)
			assert.Equal(t, tt.message.Id, decoded.Id)
			assert.Equal(t, tt.message.ConversationId, decoded.ConversationId)
			assert.Equal(t, tt.message.Speaker, decoded.Speaker)
			assert.Equal(t, tt.message.Text, decoded.Text)
			assert.True(t, tt.message.CreatedAt.Equal(decoded.CreatedAt))
		})
	}
}

func TestMarshalUnmarshalConversation(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	conversation := &core.Conversation{
		Id:        5,
		Title:     "Trip Planning",
		Pinned:    true,
		Deleted:   true,
		CreatedAt: now.Add(-24 * time.Hour),
		UpdatedAt: now,
	}

	decoded, err := UnmarshalConversation(MarshalConversation(conversation))
	require.NoError(t, err)
	assert.Equal(t, conversation.Title, decoded.Title)
	assert.True(t, decoded.Pinned)
	assert.False(t, decoded.Archived)
	assert.True(t, decoded.Deleted)
	assert.True(t, conversation.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, conversation.UpdatedAt.Equal(decoded.UpdatedAt))
}
