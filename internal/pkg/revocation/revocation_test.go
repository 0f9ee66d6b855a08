package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "token-a", time.Now().Add(time.Hour)))

	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Raw tokens never reach redis.
	assert.False(t, mr.Exists(redisKeyPrefix+"token-a"))

	// Entry expires with the token.
	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisStore_ExpiredTokenIsNotStored(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	require.NoError(t, store.Revoke(context.Background(), "old", time.Now().Add(-time.Minute)))
	assert.Empty(t, mr.Keys())
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	store := NewRedisStore(client)
	_, err := store.IsRevoked(context.Background(), "token-a")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "token-a", now.Add(time.Hour)))
	revoked, err := store.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = store.IsRevoked(ctx, "token-b")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = store.IsRevoked(ctx, "token-a")
	assert.False(t, revoked)

	// Expired entries are pruned on the next write.
	require.NoError(t, store.Revoke(ctx, "token-b", now.Add(time.Hour)))
	assert.Len(t, store.revokedTokens, 1)
}
