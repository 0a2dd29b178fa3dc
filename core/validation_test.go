package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateMessage(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		message *Message
		wantErr error
	}{
		{
			name: "valid message",
			message: &Message{
				Id:             1,
				ConversationId: 7,
				Speaker:        SpeakerTypeHuman,
				Text:           "Hello world",
				CreatedAt:      validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid message with ID 0",
			message: &Message{
				Speaker:   SpeakerTypeAI,
				Text:      "Response",
				CreatedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil message",
			message: nil,
			wantErr: ErrInvalidMessage,
		},
		{
			name: "empty text",
			message: &Message{
				Speaker:   SpeakerTypeHuman,
				Text:      "",
				CreatedAt: validTime,
			},
			wantErr: ErrEmptyContent,
		},
		{
			name: "invalid speaker type",
			message: &Message{
				Speaker:   SpeakerType(999),
				Text:      "Hello",
				CreatedAt: validTime,
			},
			wantErr: ErrInvalidSpeakerType,
		},
		{
			name: "future timestamp",
			message: &Message{
				Speaker:   SpeakerTypeHuman,
				Text:      "Hello",
				CreatedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.message)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMessage() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateMessage() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMessage() error = %v, want %v", err, tt.wantErr)
			}
			if tt.message != nil && !errors.Is(err, ErrInvalidMessage) {
				t.Errorf("ValidateMessage() error = %v, want wrapped %v", err, ErrInvalidMessage)
			}
		})
	}
}

func TestValidateConversation(t *testing.T) {
	tests := []struct {
		name         string
		conversation *Conversation
		wantErr      error
	}{
		{
			name:         "valid conversation",
			conversation: &Conversation{Title: "Trip Planning", CreatedAt: time.Now().Add(-time.Minute)},
		},
		{
			name:         "nil conversation",
			conversation: nil,
			wantErr:      ErrInvalidConversation,
		},
		{
			name:         "blank title",
			conversation: &Conversation{Title: "   "},
			wantErr:      ErrEmptyTitle,
		},
		{
			name:         "future creation time",
			conversation: &Conversation{Title: "Later", CreatedAt: time.Now().Add(time.Hour)},
			wantErr:      ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConversation(tt.conversation)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConversation() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConversation() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseSpeakerType(t *testing.T) {
	tests := []struct {
		input   string
		want    SpeakerType
		wantErr bool
	}{
		{"human", SpeakerTypeHuman, false},
		{"User", SpeakerTypeHuman, false},
		{"assistant", SpeakerTypeAI, false},
		{" AI ", SpeakerTypeAI, false},
		{"narrator", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSpeakerType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpeakerType) {
					t.Errorf("ParseSpeakerType(%q) error = %v, want %v", tt.input, err, ErrInvalidSpeakerType)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpeakerType(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSpeakerType(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
