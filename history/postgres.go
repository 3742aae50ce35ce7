package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/lovepop1/emotiaisupport/schema"
)

// PostgresStore persists transcripts in a chat_messages table, the
// layout the production deployment uses.
type PostgresStore struct {
	db *sqlx.DB
}

type turnRow struct {
	Message   string    `db:"message"`
	Response  string    `db:"response"`
	CreatedAt time.Time `db:"created_at"`
}

// NewPostgresStore connects to Postgres and ensures the transcript table
// exists.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: connect history database: %v", schema.ErrPersistence, err)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return NewPostgresStoreFromDB(db)
}

// NewPostgresStoreFromDB reuses an existing *sqlx.DB.
func NewPostgresStoreFromDB(db *sqlx.DB) (*PostgresStore, error) {
	store := &PostgresStore{db: db}
	if err := store.ensureTable(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureTable() error {
	ddl := `
CREATE TABLE IF NOT EXISTS chat_messages (
  id              bigserial PRIMARY KEY,
  conversation_id text NOT NULL,
  message         text NOT NULL,
  response        text NOT NULL,
  created_at      timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chat_messages_conversation_idx ON chat_messages (conversation_id, created_at DESC);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("%w: ensure chat_messages: %v", schema.ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) AppendTurn(ctx context.Context, conversationID string, turn schema.ConversationTurn) error {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (conversation_id, message, response, created_at) VALUES ($1, $2, $3, $4)`,
		conversationID, turn.Message, turn.Response, createdAt)
	if err != nil {
		return fmt.Errorf("%w: append turn: %v", schema.ErrPersistence, err)
	}
	return nil
}

func (s *PostgresStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]schema.ConversationTurn, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []turnRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT message, response, created_at FROM chat_messages
		 WHERE conversation_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: read turns: %v", schema.ErrPersistence, err)
	}
	turns := make([]schema.ConversationTurn, 0, len(rows))
	for _, r := range rows {
		turns = append(turns, schema.ConversationTurn{Message: r.Message, Response: r.Response, CreatedAt: r.CreatedAt})
	}
	return reverse(turns), nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
