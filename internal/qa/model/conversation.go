package model

import (
	"context"
	"time"
)

// Message roles stored in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationRepository interface {
	// AddMessage appends a message to the history of the given session.
	AddMessage(ctx context.Context, sessionID string, message ChatMessage) error

	// LoadHistory retrieves the ordered conversation history for a session.
	LoadHistory(ctx context.Context, sessionID string) (*ConversationHistory, error)

	// ClearHistory removes all conversation history for a session.
	ClearHistory(ctx context.Context, sessionID string) error

	// MessageCount returns the number of messages stored for the session.
	MessageCount(ctx context.Context, sessionID string) (int, error)
}

// ConversationHistory represents loaded conversation data with metadata.
type ConversationHistory struct {
	SessionID string
	Messages  []ChatMessage
}

// Tail returns at most maxTurns of the most recent messages.
func (h *ConversationHistory) Tail(maxTurns int) []ChatMessage {
	if maxTurns <= 0 || len(h.Messages) <= maxTurns {
		return h.Messages
	}
	return h.Messages[len(h.Messages)-maxTurns:]
}
