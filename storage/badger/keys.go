package badger

import (
	"encoding/binary"
	"time"

	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	conversationPrefix            = "conv:"
	conversationFingerprintPrefix = "convfp:"
	conversationIDSeq             = "convseq"
	messagePrefix                 = "msg:"
	messageIDPrefix               = "msgid:"
	messageIDSeq                  = "msgseq"
)

// appendUint64 writes v in BigEndian order so lexicographic sort matches numeric sort.
func appendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}

// makeConversationKey generates a key for a conversation by ID.
// Format: prefix + id
func makeConversationKey(id core.ID) []byte {
	buf := make([]byte, 0, len(conversationPrefix)+8)
	buf = append(buf, conversationPrefix...)
	return appendUint64(buf, uint64(id))
}

// makeFingerprintKey generates a key for the import fingerprint index.
// Format: prefix + fingerprint
func makeFingerprintKey(fingerprint core.ID) []byte {
	buf := make([]byte, 0, len(conversationFingerprintPrefix)+8)
	buf = append(buf, conversationFingerprintPrefix...)
	return appendUint64(buf, uint64(fingerprint))
}

// makeMessageKey generates a composite key for a message.
// Format: prefix + conversationID + createdAt + messageID
// Scanning a conversation's prefix yields its messages in chronological order.
func makeMessageKey(conversationID core.ID, createdAt time.Time, id core.ID) []byte {
	buf := make([]byte, 0, len(messagePrefix)+24)
	buf = append(buf, messagePrefix...)
	buf = appendUint64(buf, uint64(conversationID))
	buf = appendUint64(buf, uint64(createdAt.UnixMicro()))
	return appendUint64(buf, uint64(id))
}

// makeConversationMessagesPrefix generates the partial key covering all
// messages of one conversation.
// Format: prefix + conversationID
func makeConversationMessagesPrefix(conversationID core.ID) []byte {
	buf := make([]byte, 0, len(messagePrefix)+8)
	buf = append(buf, messagePrefix...)
	return appendUint64(buf, uint64(conversationID))
}

// makeMessageIDKey generates a key for the message ID index.
// The value stored under it is the full message key.
func makeMessageIDKey(id core.ID) []byte {
	buf := make([]byte, 0, len(messageIDPrefix)+8)
	buf = append(buf, messageIDPrefix...)
	return appendUint64(buf, uint64(id))
}
