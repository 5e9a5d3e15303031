package cache

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewCache selects a backend by provider name. An empty provider falls back
// to the in-memory store.
func NewCache(provider string, redisClient *redis.Client, ttl time.Duration, logger *zerolog.Logger) (Cache, error) {
	if provider == "" {
		provider = "memory"
	}

	switch provider {
	case "memory":
		return NewMemoryCache(ttl, nil), nil

	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis client required for redis cache")
		}
		return NewRedisCache(redisClient, ttl, nil, logger), nil

	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", provider)
	}
}
