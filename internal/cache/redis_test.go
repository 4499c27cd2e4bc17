package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// unreachableClient points at a port nothing listens on.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:forecast:40.71,-74.01", forecastKey("40.71,-74.01"))
	assert.Equal(t, "session:s-1", sessionKey("s-1"))
}

func TestRedisCache_ErrorsSurface(t *testing.T) {
	c := NewRedisCache(unreachableClient(t), time.Minute)
	ctx := context.Background()

	_, ok, err := c.GetForecast(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.SetForecast(ctx, "k", "sunny"))
}

func TestRedisSessionStore_ErrorsSurface(t *testing.T) {
	s := NewRedisSessionStore(unreachableClient(t), time.Minute)
	ctx := context.Background()

	conv, err := s.Get(ctx, "s-1")
	assert.Error(t, err)
	assert.Nil(t, conv)
	assert.Error(t, s.Save(ctx, domain.Conversation{ID: "s-1"}))
	assert.Error(t, s.Delete(ctx, "s-1"))
}
