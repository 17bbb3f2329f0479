package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startRedis runs a throwaway Redis container and returns a connected client.
func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis integration test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	client, err := Connect(ctx, Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimitStore_Allow(t *testing.T) {
	client := startRedis(t)

	store := NewRateLimitStore(client, 3, time.Minute)
	now := time.Date(2024, 5, 1, 9, 0, 10, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := store.Allow("10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok, "request %d should pass", i+1)
	}

	ok, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	require.False(t, ok, "fourth request in the window must be denied")

	ok, err = store.Allow("10.0.0.2")
	require.NoError(t, err)
	require.True(t, ok, "other clients keep their own budget")

	// A new window starts a fresh counter.
	now = now.Add(time.Minute)
	ok, err = store.Allow("10.0.0.1")
	require.NoError(t, err)
	require.True(t, ok)

	ttl, err := client.TTL(context.Background(), store.key("10.0.0.1")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)
}

func TestRateLimitStore_Key(t *testing.T) {
	store := NewRateLimitStore(nil, 10, 15*time.Minute)
	at := time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC)
	store.now = func() time.Time { return at }

	require.Equal(t, "ratelimit:1.2.3.4:1714554000", store.key("1.2.3.4"))

	store.now = func() time.Time { return at.Add(7 * time.Minute) }
	require.Equal(t, "ratelimit:1.2.3.4:1714554000", store.key("1.2.3.4"), "same window, same key")
}

func TestNewRateLimitStore_DefaultWindow(t *testing.T) {
	store := NewRateLimitStore(nil, 10, 0)
	require.Equal(t, 15*time.Minute, store.window)
}
