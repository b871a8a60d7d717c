package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces session keys so the store can share a Redis
// database with other data.
const redisKeyPrefix = "lingoa:session:"

// RedisStore is a [Store] backed by Redis. Sessions are stored as JSON with a
// native TTL that is refreshed on every read and write, matching the
// in-memory store's idle eviction semantics.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisOption is a functional option for [NewRedisStore].
type RedisOption func(*RedisStore)

// WithRedisTTL overrides the idle eviction TTL. Defaults to 24 hours.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStore) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRedisStore creates a [RedisStore] around an existing client.
func NewRedisStore(client *redis.Client, opts ...RedisOption) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("session: redis client must not be nil")
	}
	r := &RedisStore{client: client, ttl: defaultTTL}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

func redisKey(id string) string { return redisKeyPrefix + id }

// Create stores a new session, failing when the ID already exists.
func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, redisKey(s.ID), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis create session %s: %w", s.ID, err)
	}
	if !ok {
		return ErrExists
	}
	return nil
}

// Get returns the session and refreshes its TTL.
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.GetEx(ctx, redisKey(id), r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session %s: %w", id, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &s, nil
}

// Update replaces the stored session and refreshes its TTL. The write runs
// under WATCH so a concurrent eviction surfaces as [ErrNotFound] instead of
// silently resurrecting the key.
func (r *RedisStore) Update(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	key := redisKey(s.ID)

	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redis update session %s: %w", s.ID, err)
	}
	return nil
}

// Delete removes the session.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ Store = (*RedisStore)(nil)
