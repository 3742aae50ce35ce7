package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lovepop1/emotiaisupport/config"
	"github.com/lovepop1/emotiaisupport/schema"
)

const redisKeyPrefix = "emotiai:history:"

// RedisStore persists transcripts in Redis lists, newest turn at the
// head. Each append re-arms the conversation TTL and trims the list to
// the retention cap.
type RedisStore struct {
	cli      redis.UniversalClient
	ttl      time.Duration
	maxTurns int
}

// NewRedisStore connects to Redis from config.
func NewRedisStore(cfg config.HistoryConfig) (*RedisStore, error) {
	if cfg.Redis == nil || cfg.Redis.Addr == "" {
		return nil, errors.New("redis history store requires an address")
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return NewRedisStoreFromClient(cli, ttl, cfg.MaxTurns), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(cli redis.UniversalClient, ttl time.Duration, maxTurns int) *RedisStore {
	return &RedisStore{cli: cli, ttl: ttl, maxTurns: maxTurns}
}

func (s *RedisStore) key(conversationID string) string {
	return redisKeyPrefix + conversationID
}

func (s *RedisStore) AppendTurn(ctx context.Context, conversationID string, turn schema.ConversationTurn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("%w: encode turn: %v", schema.ErrPersistence, err)
	}

	key := s.key(conversationID)
	pipe := s.cli.TxPipeline()
	pipe.LPush(ctx, key, payload)
	if s.maxTurns > 0 {
		pipe.LTrim(ctx, key, 0, int64(s.maxTurns)-1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: append turn: %v", schema.ErrPersistence, err)
	}
	return nil
}

func (s *RedisStore) RecentTurns(ctx context.Context, conversationID string, limit int) ([]schema.ConversationTurn, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := s.cli.LRange(ctx, s.key(conversationID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read turns: %v", schema.ErrPersistence, err)
	}
	turns := make([]schema.ConversationTurn, 0, len(raw))
	for _, item := range raw {
		var turn schema.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("%w: decode turn: %v", schema.ErrPersistence, err)
		}
		turns = append(turns, turn)
	}
	return reverse(turns), nil
}

func (s *RedisStore) Close() error {
	return s.cli.Close()
}
