package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process memory store for local/dev use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]TurnRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]TurnRecord)}
}

func (s *InMemoryStore) AppendExchange(_ context.Context, userID, inputText, replyText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	s.records[userID] = append(s.records[userID],
		TurnRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			Role:      RoleUser,
			Content:   inputText,
			CreatedAt: now,
		},
		TurnRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			Role:      RoleAssistant,
			Content:   replyText,
			CreatedAt: now,
		},
	)
	return nil
}

func (s *InMemoryStore) Window(_ context.Context, userID string, limit int) ([]TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[userID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]TurnRecord, 0, limit)
	for i := len(arr) - limit; i < len(arr); i++ {
		out = append(out, arr[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
