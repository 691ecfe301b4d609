package models

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. Messages are immutable once created and
// live only in process memory.
type Message struct {
	ID        uint64    `json:"id"`
	Role      Role      `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Speaker returns the transcript label for the message author.
func (m Message) Speaker() string {
	if m.Role == RoleUser {
		return "You"
	}
	return "AI"
}
