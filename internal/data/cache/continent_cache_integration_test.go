//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/yungbote/atlas-backend/internal/platform/logger"
)

func TestRedisContinentCache(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := NewRedisClient(ctx, RedisOptions{URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisContinentCache(rdb, time.Minute, logger.Nop())

	_, ok, err := c.Get(ctx, "Europe")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "Europe", 42))
	id, ok, err := c.Get(ctx, "Europe")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint(42), id)

	ttl, err := rdb.TTL(ctx, continentKey("Europe")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, rdb.Set(ctx, continentKey("Broken"), "not-a-number", 0).Err())
	_, ok, err = c.Get(ctx, "Broken")
	require.NoError(t, err)
	require.False(t, ok)
	_, err = rdb.Get(ctx, continentKey("Broken")).Result()
	require.ErrorIs(t, err, goredis.Nil)

	require.NoError(t, c.Delete(ctx, "Europe"))
	_, ok, err = c.Get(ctx, "Europe")
	require.NoError(t, err)
	require.False(t, ok)
}
