package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/roombooking/config"
	"github.com/redis/go-redis/v9"
)

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
}

// RedisCache caches forecast summaries.
type RedisCache struct {
	client      *redis.Client
	forecastTTL time.Duration
}

func NewRedisCache(client *redis.Client, forecastTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, forecastTTL: forecastTTL}
}

// GetForecast reports ok=false on a cache miss.
func (c *RedisCache) GetForecast(ctx context.Context, key string) (string, bool, error) {
	summary, err := c.client.Get(ctx, forecastKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return summary, true, nil
}

func (c *RedisCache) SetForecast(ctx context.Context, key, summary string) error {
	return c.client.Set(ctx, forecastKey(key), summary, c.forecastTTL).Err()
}

func forecastKey(key string) string {
	return "cache:forecast:" + key
}
