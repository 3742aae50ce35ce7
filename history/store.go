// Package history persists conversation transcripts and serves the
// recent-turn windows the prompt assembler works from.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

// Store persists conversation turns.
//
// Turns are stored most recent first; RecentTurns reverses the window so
// callers always receive chronological order, oldest first.
type Store interface {
	// AppendTurn records a completed exchange for a conversation.
	AppendTurn(ctx context.Context, conversationID string, turn schema.ConversationTurn) error

	// RecentTurns returns up to limit of the newest turns, oldest first.
	// An unknown conversation yields an empty slice, not an error.
	RecentTurns(ctx context.Context, conversationID string, limit int) ([]schema.ConversationTurn, error)
}

// NewStore creates a history store from config.
func NewStore(cfg config.HistoryConfig) (Store, error) {
	switch strings.ToLower(cfg.Store) {
	case "", "memory":
		return NewMemoryStore(cfg.MaxTurns), nil
	case "redis":
		return NewRedisStore(cfg)
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown history store: %s", cfg.Store)
	}
}

// reverse flips a newest-first window into chronological order in place.
func reverse(turns []schema.ConversationTurn) []schema.ConversationTurn {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}
