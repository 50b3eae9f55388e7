package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
)

func newTestCache(t *testing.T) (*RedisProfileCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisProfileCache(client, time.Minute), mr
}

func TestProfileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	_, ok := cache.Get(ctx, "u1")
	assert.False(t, ok)

	cache.Set(ctx, &entity.User{ID: "u1", DisplayName: "Ana", Role: entity.RoleProvider})
	assert.True(t, mr.Exists(profileKeyPrefix+"u1"))
	assert.Equal(t, time.Minute, mr.TTL(profileKeyPrefix+"u1"))

	user, ok := cache.Get(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, "Ana", user.DisplayName)

	cache.Invalidate(ctx, "u1")
	_, ok = cache.Get(ctx, "u1")
	assert.False(t, ok)
}

func TestProfileCacheExpiresAndSurvivesOutage(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	cache.Set(ctx, &entity.User{ID: "u1"})
	mr.FastForward(2 * time.Minute)
	_, ok := cache.Get(ctx, "u1")
	assert.False(t, ok)

	mr.Close()
	cache.Set(ctx, &entity.User{ID: "u2"})
	_, ok = cache.Get(ctx, "u2")
	assert.False(t, ok)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}
