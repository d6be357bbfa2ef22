package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisCache_SetGetDelete(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewRedisCache(client, "monitor")
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "subscriber:id:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "subscriber:id:1", []byte(`{"id":1}`), time.Minute))
	assert.True(t, mr.Exists("monitor:subscriber:id:1"))

	val, ok, err := cache.Get(ctx, "subscriber:id:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, string(val))

	require.NoError(t, cache.Set(ctx, "subscriber:email:x", []byte("x"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "subscriber:id:1", "subscriber:email:x", "missing"))
	assert.False(t, mr.Exists("monitor:subscriber:id:1"))
	assert.False(t, mr.Exists("monitor:subscriber:email:x"))
}

func TestRedisCache_TTLExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewRedisCache(client, "")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, ok, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_ErrorsWhenServerDown(t *testing.T) {
	mr, client := setupTestRedis(t)
	cache := NewRedisCache(client, "monitor")
	mr.Close()

	_, _, err := cache.Get(context.Background(), "k")
	assert.Error(t, err)
}
