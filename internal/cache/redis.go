package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
)

const redisKeyPrefix = "scout:result:"

// RedisCache stores entries as JSON values with a server-side TTL. Redis
// SET is atomic, which gives the publish-when-complete semantics for free;
// expiry is enforced by the server rather than checked lazily.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	now    Clock
	logger *zerolog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, now Clock, logger *zerolog.Logger) *RedisCache {
	if now == nil {
		now = time.Now
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
		now:    now,
		logger: logger,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("corrupt cache entry, treating as miss")
		return nil, false
	}

	if entry.Expired(c.now()) {
		return nil, false
	}

	return &entry, true
}

func (c *RedisCache) Put(ctx context.Context, key string, results []models.ScoredRepo, intentKeywords []string) {
	entry := models.CacheEntry{
		Key:            key,
		Results:        results,
		IntentKeywords: intentKeywords,
		ExpiresAt:      c.now().Add(c.ttl),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("failed to serialize cache entry")
		return
	}

	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
