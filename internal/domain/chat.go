package domain

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one entry of the append-only conversation history.
// Messages are never mutated after creation, only appended.
type ChatMessage struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// TurnRequest is everything a single chat turn needs: the validated profile
// and the full prior conversation plus the new user message, in send order.
type TurnRequest struct {
	Profile  *UserProfile
	Messages []ChatMessage
}
