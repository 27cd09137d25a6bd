package domain

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// MessageID is the 32-byte identity of a message: either a topic supplied
// by the sender or the hash of its instructions.
type MessageID [32]byte

// ParseMessageID decodes a hex id, with or without a 0x prefix.
func ParseMessageID(s string) (MessageID, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return MessageID{}, fmt.Errorf("invalid message id: %w", err)
	}
	if len(raw) != len(MessageID{}) {
		return MessageID{}, fmt.Errorf("invalid message id: want 32 bytes, got %d", len(raw))
	}
	var id MessageID
	copy(id[:], raw)
	return id, nil
}

// HashInstructions computes the blake2b-256 content hash used when no
// explicit message id was assigned. Equal sequences hash equally, so the
// result is not unique across resubmissions.
func HashInstructions(instructions Instructions) MessageID {
	if instructions == nil {
		instructions = Instructions{}
	}
	// Marshal only fails on unsupported types; Instruction has none.
	encoded, _ := json.Marshal(instructions)
	return MessageID(blake2b.Sum256(encoded))
}

// IsZero reports whether the id is all zero bytes.
func (id MessageID) IsZero() bool {
	return id == MessageID{}
}

func (id MessageID) String() string {
	return "0x" + hex.EncodeToString(id[:])
}

func (id MessageID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *MessageID) UnmarshalText(text []byte) error {
	parsed, err := ParseMessageID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
