// Package locker provides the Redis backed listing lock and picks the lock
// backend for the bookings service.
package locker

import (
	"context"
	"fmt"
	"time"

	bookingerrors "rentmate/internal/bookings/errors"
	"rentmate/internal/bookings/repository"
	"rentmate/internal/bookings/workflow"
	"rentmate/pkg/config"
	"rentmate/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.Cmdable
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisLocker(client redis.Cmdable, ttl time.Duration, log *logger.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, bookingerrors.ErrLockHeld
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("Failed to release listing lock", "lock_id", key, "error", err)
		}
	}, nil
}

// New returns the Locker selected by configuration, or nil when writes are
// not serialized.
func New(cfg *config.Config) workflow.Locker {
	if !cfg.BookingSerializeWrites {
		cfg.Log.Warn("Booking writes are not serialized; concurrent bookings may overlap")
		return nil
	}

	switch cfg.BookingLockBackend {
	case config.LockBackendRedis:
		cfg.Log.Info("Using Redis listing locks", "ttl", cfg.BookingLockTTL)
		return NewRedisLocker(cfg.Client.Redis, cfg.BookingLockTTL, cfg.Log)
	default:
		cfg.Log.Info("Using Mongo listing locks", "ttl", cfg.BookingLockTTL)
		return repository.NewListingLockRepository(cfg)
	}
}
