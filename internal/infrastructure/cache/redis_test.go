package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/smartshop/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_SetAndGet(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisCache(client, "valid:")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "https://shop.example/a", true, time.Hour))

	got, err := cache.Get(ctx, "https://shop.example/a")
	require.NoError(t, err)
	assert.Equal(t, true, got)
}

func TestRedisCache_StoresNil(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisCache(client, "image:")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "https://shop.example/a", nil, time.Hour))

	got, err := cache.Get(ctx, "https://shop.example/a")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_PrefixesAreIndependent(t *testing.T) {
	mr, client := newTestRedis(t)
	valid := NewRedisCache(client, "valid:")
	images := NewRedisCache(client, "image:")
	ctx := context.Background()

	require.NoError(t, valid.Set(ctx, "https://shop.example/a", true, time.Hour))

	_, err := images.Get(ctx, "https://shop.example/a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
	assert.True(t, mr.Exists("valid:https://shop.example/a"))
}

func TestRedisCache_Expiration(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client, "valid:")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "key", true, time.Hour))
	mr.FastForward(61 * time.Minute)

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisCache_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisCache(client, "valid:")
	mr.Close()

	_, err := cache.Get(context.Background(), "key")
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)

	err = cache.Set(context.Background(), "key", true, time.Hour)
	assert.ErrorIs(t, err, domain.ErrCacheUnavailable)
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", client.Options().Addr)
	_ = client.Close()

	_, err = NewRedisClient("not a url")
	assert.Error(t, err)
}
