// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateConversation validates a Conversation according to domain rules.
//
// Validation rules:
//   - Title must not be blank
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - ID (0 is valid, the store assigns one from a sequence)
func ValidateConversation(conversation *Conversation) error {
	if conversation == nil {
		return fmt.Errorf("%w: conversation is nil", ErrInvalidConversation)
	}

	if strings.TrimSpace(conversation.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConversation, ErrEmptyTitle)
	}

	if !IsValidTimestamp(conversation.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidConversation, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SpeakerType must be valid (Human or AI)
//   - CreatedAt must not be in the future
func ValidateMessage(message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if message.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateSpeakerType(message.Speaker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if !IsValidTimestamp(message.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateSpeakerType validates that a SpeakerType has a valid value.
func ValidateSpeakerType(speaker SpeakerType) error {
	if speaker != SpeakerTypeHuman && speaker != SpeakerTypeAI {
		return fmt.Errorf("%w: value %d", ErrInvalidSpeakerType, speaker)
	}
	return nil
}

// ParseSpeakerType maps the textual speaker names used in transcripts.
func ParseSpeakerType(name string) (SpeakerType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "human", "user":
		return SpeakerTypeHuman, nil
	case "ai", "assistant", "bot":
		return SpeakerTypeAI, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSpeakerType, name)
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
