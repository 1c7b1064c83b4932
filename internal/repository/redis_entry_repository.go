package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/storefront/storefront/internal/database"
)

// RedisEntryRepository stores each session namespace as one Redis hash at
// <prefix>:session:<sessionID>, one field per key. Every write resets the TTL of the
// hash, so an idle session expires with all of its keys at once.
type RedisEntryRepository struct {
	rdb    *database.Redis
	prefix string
	ttl    time.Duration
}

// NewRedisEntryRepository creates a new RedisEntryRepository
func NewRedisEntryRepository(rdb *database.Redis, prefix string, ttl time.Duration) *RedisEntryRepository {
	if prefix == "" {
		prefix = "storefront"
	}
	return &RedisEntryRepository{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisEntryRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:session:%s", r.prefix, sessionID)
}

// Get retrieves a value
func (r *RedisEntryRepository) Get(ctx context.Context, sessionID, key string) ([]byte, error) {
	value, err := r.rdb.HGetBytes(ctx, r.sessionKey(sessionID), key)
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get %s: %v", ErrUnavailable, key, err)
	}
	return value, nil
}

// Set stores a value and refreshes the session TTL
func (r *RedisEntryRepository) Set(ctx context.Context, sessionID, key string, value []byte) error {
	if err := r.rdb.HSetWithTTL(ctx, r.sessionKey(sessionID), key, value, r.ttl); err != nil {
		return fmt.Errorf("%w: failed to set %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Delete removes a value
func (r *RedisEntryRepository) Delete(ctx context.Context, sessionID, key string) error {
	if err := r.rdb.HDelete(ctx, r.sessionKey(sessionID), key); err != nil {
		return fmt.Errorf("%w: failed to delete %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// Clear removes the whole session
func (r *RedisEntryRepository) Clear(ctx context.Context, sessionID string) error {
	if err := r.rdb.Delete(ctx, r.sessionKey(sessionID)); err != nil {
		return fmt.Errorf("%w: failed to clear session: %v", ErrUnavailable, err)
	}
	return nil
}
