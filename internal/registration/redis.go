package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "dolap:pending:"

// Entries outlive their code expiry by this much so a late verification still sees the
// entry and can report "expired" (and clear it) instead of "register first".
const expiryRetention = time.Hour

// RedisStore backs the pending-registration state with Redis, so registrations survive
// process restarts and multiple replicas share one pending set.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, p Pending) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("pending store: marshal entry: %w", err)
	}

	ttl := time.Until(p.ExpiresAt) + expiryRetention
	if ttl <= 0 {
		ttl = expiryRetention
	}

	if err := s.client.Set(ctx, redisKey(p.Email), payload, ttl).Err(); err != nil {
		return fmt.Errorf("pending store: set: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, email string) (Pending, bool, error) {
	payload, err := s.client.Get(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, fmt.Errorf("pending store: get: %w", err)
	}
	return decodePending(payload)
}

// Take relies on GETDEL so that only one of two racing callers receives the entry.
func (s *RedisStore) Take(ctx context.Context, email string) (Pending, bool, error) {
	payload, err := s.client.GetDel(ctx, redisKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Pending{}, false, nil
	}
	if err != nil {
		return Pending{}, false, fmt.Errorf("pending store: getdel: %w", err)
	}
	return decodePending(payload)
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, redisKey(email)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("pending store: del: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op: Redis evicts entries via the key TTL set in Put.
func (s *RedisStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func decodePending(payload []byte) (Pending, bool, error) {
	var entry Pending
	if err := json.Unmarshal(payload, &entry); err != nil {
		return Pending{}, false, fmt.Errorf("pending store: decode entry: %w", err)
	}
	return entry, true, nil
}

func redisKey(email string) string {
	return redisKeyPrefix + normalizeEmail(email)
}
