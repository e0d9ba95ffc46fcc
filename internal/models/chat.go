package models

import "time"

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of a conversation.
type Message struct {
	// ID is the unique identifier for the message (UUID format).
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is one Consill IA chat thread.
type Conversation struct {
	// ID is the unique identifier for the conversation (UUID format).
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

// Clone returns a copy that does not share the message slice.
func (c Conversation) Clone() Conversation {
	c.Messages = append([]Message(nil), c.Messages...)
	return c
}
