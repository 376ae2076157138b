//go:build integration

package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisSessionCacheRoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb := goredis.NewClient(&goredis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })

	cache := NewRedisSessionCache(rdb)

	_, ok, err := cache.Get(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, "tok", &User{ID: "user-1", Email: "u@example.com"}, time.Minute))
	user, ok, err := cache.Get(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "user-1", user.ID)

	keys, err := rdb.Keys(ctx, "timeflow:session:*").Result()
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.NotContains(t, keys[0], "tok")

	ttl, err := rdb.TTL(ctx, keys[0]).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Delete(ctx, "tok"))
	_, ok, err = cache.Get(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)
}
