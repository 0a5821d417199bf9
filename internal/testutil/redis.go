package testutil

import (
	"context"
	"testing"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient returns a client on a flushed database of the test Redis.
func NewRedisClient(t *testing.T, env *TestEnv) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        env.RedisAddr,
		DB:          15,
		DialTimeout: ConnectionTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis unavailable at %s: %v", env.RedisAddr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("failed to flush Redis: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}
