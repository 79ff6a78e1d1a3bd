// Package message holds the chat messages exchanged with model backends and
// the (question, answer) turns clients keep as history.
package message

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one chat message sent to or received from a model.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage stamps a message with a fresh ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// System returns a system instruction message.
func System(content string) *Message { return NewMessage(RoleSystem, content) }

// User returns a user message.
func User(content string) *Message { return NewMessage(RoleUser, content) }

// Assistant returns a model reply.
func Assistant(content string) *Message { return NewMessage(RoleAssistant, content) }

// Text returns the trimmed content; a nil message yields "".
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.Content)
}
