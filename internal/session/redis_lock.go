package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/andreasstove999/ecommerce-system/chat-order-service-go/internal/apperror"
)

const redisLockPrefix = "chat-order:session-lock:"

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker coordinates per-customer locks across service instances.
// The TTL bounds how long a crashed holder can block a customer.
type RedisLocker struct {
	client redis.Cmdable
	wait   time.Duration
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client redis.Cmdable, wait, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, wait: wait, ttl: ttl, retry: 25 * time.Millisecond}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := redisLockPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %w", apperror.ErrLockTimeout, err)
			}
			return nil, apperror.Unavailable(fmt.Errorf("redis setnx: %w", err))
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		if time.Now().Add(l.retry).After(deadline) {
			return nil, fmt.Errorf("%w: key %s after %s", apperror.ErrLockTimeout, key, l.wait)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", apperror.ErrLockTimeout, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		// Release must run even when the handler's context is already done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
	}
}
