package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"alima/internal/domain/entity"
	"alima/pkg/logger"
)

const profileKeyPrefix = "alima:profile:"

// RedisProfileCache caches user profiles for the per-item point reads done
// when enriching listings and conversation lists. Failures are logged and
// treated as misses.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*entity.User, bool) {
	raw, err := c.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Profile cache read failed for %s: %v", userID, err)
		}
		return nil, false
	}

	var user entity.User
	if err := json.Unmarshal(raw, &user); err != nil {
		logger.Warn("Profile cache entry for %s is corrupt: %v", userID, err)
		return nil, false
	}
	return &user, true
}

func (c *RedisProfileCache) Set(ctx context.Context, user *entity.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+user.ID, raw, c.ttl).Err(); err != nil {
		logger.Warn("Profile cache write failed for %s: %v", user.ID, err)
	}
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, profileKeyPrefix+userID).Err(); err != nil {
		logger.Warn("Profile cache invalidate failed for %s: %v", userID, err)
	}
}

// NoopProfileCache is used when no Redis URL is configured.
type NoopProfileCache struct{}

func (NoopProfileCache) Get(ctx context.Context, userID string) (*entity.User, bool) {
	return nil, false
}

func (NoopProfileCache) Set(ctx context.Context, user *entity.User) {}

func (NoopProfileCache) Invalidate(ctx context.Context, userID string) {}
