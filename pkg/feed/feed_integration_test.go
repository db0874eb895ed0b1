//go:build integration

package feed

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/metal-archives-client/pkg/client"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = redisC.Terminate(ctx) })

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestHomepage_RefreshServedFromCache(t *testing.T) {
	site := newSite(t)
	rdb := setupRedis(t)

	cfg := client.DefaultConfig("metalfeed-integration/1.0")
	cfg.BaseURL = site.URL()
	cfg.Redis = rdb
	cfg.EnableCache = true
	c, err := client.New(cfg)
	require.NoError(t, err)

	h := New(c, Config{
		BaseURL: c.BaseURL(),
		Now:     func() time.Time { return february },
	}, nil)

	ctx := context.Background()
	require.NoError(t, h.Refresh(ctx))
	requests := site.GetRequestCount()
	assert.Equal(t, len(Sections()), requests)

	// Fresh entries without validators are served straight from Redis.
	require.NoError(t, h.Refresh(ctx))
	assert.Equal(t, requests, site.GetRequestCount())
	assert.Len(t, h.BandAdditions(), 200)
	require.NotNil(t, h.Statistic())
}
