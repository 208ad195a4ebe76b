package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestCache needs a Redis server; REDIS_TEST_ADDR overrides localhost:6379.
func setupTestCache(t *testing.T) *QueryCache {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}

	c := New(client, "test:"+uuid.NewString()+":", time.Minute)
	t.Cleanup(func() {
		_ = c.InvalidateAll(context.Background())
		c.Close()
	})
	return c
}

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestQueryCache_MissThenHit(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	var got page
	found, err := c.Get(ctx, "list:a", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "list:a", page{Items: []string{"x"}, Total: 1}))

	found, err = c.Get(ctx, "list:a", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, page{Items: []string{"x"}, Total: 1}, got)
}

func TestQueryCache_InvalidateAll(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "list:a", page{Total: 1}))
	require.NoError(t, c.Set(ctx, "list:b", page{Total: 2}))
	require.NoError(t, c.InvalidateAll(ctx))

	var got page
	for _, key := range []string{"list:a", "list:b"} {
		found, err := c.Get(ctx, key, &got)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestNewDefaultsPrefix(t *testing.T) {
	c := New(redis.NewClient(&redis.Options{}), "", time.Second)
	defer c.Close()
	assert.Equal(t, DefaultPrefix, c.prefix)
}
