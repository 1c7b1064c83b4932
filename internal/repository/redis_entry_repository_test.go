package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/storefront/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisEntryRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisEntryRepository(&database.Redis{Client: client}, "test", ttl), mr
}

func TestRedisEntryRepository_SetGet(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Hour)

	require.NoError(t, repo.Set(ctx, "s1", "cart", []byte(`[{"id":1}]`)))

	got, err := repo.Get(ctx, "s1", "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	assert.Equal(t, `[{"id":1}]`, mr.HGet("test:session:s1", "cart"))
	assert.Equal(t, time.Hour, mr.TTL("test:session:s1"))
}

func TestRedisEntryRepository_GetMissing(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)

	_, err := repo.Get(context.Background(), "s1", "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisEntryRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, time.Minute)

	require.NoError(t, repo.Set(ctx, "s1", "cart", []byte(`[]`)))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "s1", "cart")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisEntryRepository_WriteKeepsWholeSessionAlive(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 24*time.Hour)

	require.NoError(t, repo.Set(ctx, "s1", "users", []byte(`[{"id":"u1"}]`)))
	require.NoError(t, repo.Set(ctx, "s1", "currentUser", []byte(`{"id":"u1"}`)))

	mr.FastForward(23 * time.Hour)
	require.NoError(t, repo.Set(ctx, "s1", "cart", []byte(`[{"id":1}]`)))
	mr.FastForward(2 * time.Hour)

	for _, key := range []string{"users", "currentUser", "cart"} {
		_, err := repo.Get(ctx, "s1", key)
		assert.NoError(t, err, key)
	}

	mr.FastForward(24 * time.Hour)
	for _, key := range []string{"users", "currentUser", "cart"} {
		_, err := repo.Get(ctx, "s1", key)
		assert.ErrorIs(t, err, ErrNotFound, key)
	}
}

func TestRedisEntryRepository_Clear(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 0)

	require.NoError(t, repo.Set(ctx, "s1", "cart", []byte(`[]`)))
	require.NoError(t, repo.Set(ctx, "s1", "orders", []byte(`[]`)))
	require.NoError(t, repo.Set(ctx, "s2", "cart", []byte(`[]`)))

	require.NoError(t, repo.Delete(ctx, "s1", "missing"))
	require.NoError(t, repo.Delete(ctx, "s1", "orders"))
	fields, err := mr.HKeys("test:session:s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cart"}, fields)

	require.NoError(t, repo.Clear(ctx, "s1"))

	assert.False(t, mr.Exists("test:session:s1"))
	assert.True(t, mr.Exists("test:session:s2"))

	// Clearing an empty session is fine
	require.NoError(t, repo.Clear(ctx, "s1"))
}

func TestRedisEntryRepository_Unavailable(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisRepo(t, 0)
	mr.Close()

	err := repo.Set(ctx, "s1", "cart", []byte(`[]`))
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = repo.Get(ctx, "s1", "cart")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}
