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


package storage

import (
	"fmt"

	"github.com/poiesic/recall/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalConversation serializes a Conversation to bytes.
func MarshalConversation(conversation *core.Conversation) []byte {
	buf := make([]byte, core.ConversationMUS.Size(*conversation))
	core.ConversationMUS.Marshal(*conversation, buf)
	return buf
}

// UnmarshalConversation deserializes a Conversation from bytes.
func UnmarshalConversation(data []byte) (*core.Conversation, error) {
	conversation, _, err := core.ConversationMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: conversation: %w", ErrSerializationFailed, err)
	}
	return &conversation, nil
}

// MarshalMessage serializes a Message to bytes.
func MarshalMessage(message *core.Message) []byte {
	buf := make([]byte, core.MessageMUS.Size(*message))
	core.MessageMUS.Marshal(*message, buf)
	return buf
}

// UnmarshalMessage deserializes a Message from bytes.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	message, _, err := core.MessageMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: message: %w", ErrSerializationFailed, err)
	}
	return &message, nil
}
