package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/cache"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	_ port.Cache[*domain.Session] = (*cache.InMemory[*domain.Session])(nil)
	_ port.Cache[*domain.Session] = (*cache.Redis[*domain.Session])(nil)
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", "value1")
	val, ok := c.Get(ctx, "key1")
	require.True(t, ok)
	assert.Equal(t, "value1", val)
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	_, ok := c.Get(context.Background(), "nonexistent")
	assert.False(t, ok)
}

func TestCache_Expiration(t *testing.T) {
	c := cache.New[string](50 * time.Millisecond)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", "value1")
	time.Sleep(100 * time.Millisecond)

	_, ok := c.Get(ctx, "key1")
	assert.False(t, ok, "expected cache entry to be expired")
}

func TestCache_CleanupPurgesExpired(t *testing.T) {
	c := cache.New[string](20 * time.Millisecond)
	defer c.Close()

	c.Set(context.Background(), "key1", "value1")
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "key1", "value1")
	c.Delete(ctx, "key1")

	_, ok := c.Get(ctx, "key1")
	assert.False(t, ok)
}

func TestRedis_UnreachableServerIsAMiss(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := cache.NewRedis[*domain.Session](rdb, "session:", time.Minute, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, "tok", &domain.Session{UserID: "u1"})
	_, ok := c.Get(ctx, "tok")
	assert.False(t, ok)
	c.Delete(ctx, "tok")
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	_, err := cache.NewRedisClient(context.Background(), "not-a-url")
	assert.Error(t, err)
}
