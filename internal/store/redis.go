package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"concierge/internal/model"
)

// RedisSessionStore keeps JSON-encoded sessions in redis. Every save
// refreshes the key's TTL, so idle sessions expire.
type RedisSessionStore struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configures the redis session store
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// NewRedisSessionStore connects to redis and verifies the connection
func NewRedisSessionStore(opts RedisOptions) (*RedisSessionStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisSessionStore{rdb: rdb, prefix: opts.KeyPrefix, ttl: opts.TTL}, nil
}

func (s *RedisSessionStore) key(userID string) string {
	return s.prefix + "session:" + userID
}

// GetSession loads the session for userID
func (s *RedisSessionStore) GetSession(ctx context.Context, userID string) (*model.ConversationState, error) {
	raw, err := s.rdb.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &state, nil
}

// SaveSession writes state and resets its expiry
func (s *RedisSessionStore) SaveSession(ctx context.Context, state *model.ConversationState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(state.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Ping checks the redis connection
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the redis connection
func (s *RedisSessionStore) Close() error {
	return s.rdb.Close()
}
