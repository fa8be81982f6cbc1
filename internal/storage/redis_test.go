package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStorage on top of it
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return NewRedisStorage(client, ttl), mr, cleanup
}

func TestRedisStorage_Contract(t *testing.T) {
	s, _, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	runStorageContract(t, s)
}

func TestRedisStorage_UsesPrefixedKeys(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	require.NoError(t, s.Set(context.Background(), "sid-1:cartItems", []byte(`[]`)))

	assert.True(t, mr.Exists("storefront:sid-1:cartItems"))
	got, err := mr.Get("storefront:sid-1:cartItems")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestRedisStorage_TTL(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t, time.Hour)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	assert.Equal(t, time.Hour, mr.TTL("storefront:k"))

	mr.FastForward(2 * time.Hour)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage_ServerDown(t *testing.T) {
	s, mr, cleanup := setupTestRedis(t, 0)
	defer cleanup()

	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "redis get failed")
}
