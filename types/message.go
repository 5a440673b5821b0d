package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role represents the message role
type Role string

const (
	// RoleUser represents a user message
	RoleUser Role = "user"

	// RoleAssistant represents an assistant message
	RoleAssistant Role = "assistant"

	// RoleSystem represents a system message
	RoleSystem Role = "system"
)

// Message represents a single conversation turn.
//
// A message is immutable once created. Its position in the owning
// conversation slice is the key used by detectors and the sanitizer;
// the ID is an opaque identity token used when comparing the original
// sequence against a filtered view (two messages can carry identical
// content, so content equality is never used for that).
type Message struct {
	ID        uuid.UUID  `json:"id"`
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with a fresh identity token.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:      uuid.New(),
		Role:    role,
		Content: content,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// String returns an abbreviated representation for logs and debugging.
func (m *Message) String() string {
	preview := m.Content
	if len(preview) > 100 {
		preview = preview[:100]
	}
	return fmt.Sprintf("%s: %s...", m.Role, preview)
}
