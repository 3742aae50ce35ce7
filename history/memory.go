package history

import (
	"context"
	"sync"
	"time"

	"github.com/lovepop1/emotiaisupport/schema"
)

// MemoryStore keeps transcripts in process memory, newest turn first.
type MemoryStore struct {
	mu       sync.RWMutex
	turns    map[string][]schema.ConversationTurn
	maxTurns int
}

// NewMemoryStore creates an in-memory history store that retains at most
// maxTurns turns per conversation (0 means no trim).
func NewMemoryStore(maxTurns int) *MemoryStore {
	return &MemoryStore{turns: make(map[string][]schema.ConversationTurn), maxTurns: maxTurns}
}

func (s *MemoryStore) AppendTurn(ctx context.Context, conversationID string, turn schema.ConversationTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.turns[conversationID]
	updated := make([]schema.ConversationTurn, 0, len(existing)+1)
	updated = append(updated, turn)
	updated = append(updated, existing...)
	if s.maxTurns > 0 && len(updated) > s.maxTurns {
		updated = updated[:s.maxTurns]
	}
	s.turns[conversationID] = updated
	return nil
}

func (s *MemoryStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]schema.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.turns[conversationID]
	n := len(stored)
	if limit > 0 && limit < n {
		n = limit
	}
	window := make([]schema.ConversationTurn, n)
	copy(window, stored[:n])
	return reverse(window), nil
}
