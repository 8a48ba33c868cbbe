package memory

import (
	"context"
	"time"
)

// Turn roles as stored and as replayed into prompts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TurnRecord stores a single user or assistant conversational turn.
type TurnRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves conversational memory.
type Store interface {
	// AppendExchange writes one completed exchange as two turns, the
	// user input first and the assistant reply second.
	AppendExchange(ctx context.Context, userID, inputText, replyText string) error
	// Window returns at most limit of the newest turns for a user in
	// chronological (oldest-first) order. A user with no history gets
	// an empty window, not an error.
	Window(ctx context.Context, userID string, limit int) ([]TurnRecord, error)
	Close() error
}
