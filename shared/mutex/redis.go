package mutex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisKeyPrefix = "lock:"
	retryInterval  = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still carries our token, so an expired
// lock that someone else has since taken is left alone.
var releaseScript = goRedis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *goRedis.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedis(client *goRedis.Client, ttl, wait time.Duration) Locker {
	return &redisLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
	}
}

func (r *redisLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	token := uuid.NewString()

	if r.wait > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}

	held := make([]string, 0, len(keys))

	for _, key := range normalizeKeys(keys) {
		redisKey := redisKeyPrefix + key

		if err := r.lock(ctx, redisKey, token); err != nil {
			r.unlockAll(held, token)

			return nil, err
		}

		held = append(held, redisKey)
	}

	var once sync.Once

	return func() { once.Do(func() { r.unlockAll(held, token) }) }, nil
}

func (r *redisLocker) lock(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-ticker.C:
		}
	}
}

func (r *redisLocker) unlockAll(keys []string, token string) {
	ctx := context.Background()

	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, r.client, []string{keys[i]}, token).Err(); err != nil {
			log.Error().Err(err).Str("key", keys[i]).Msg("failed to release lock")
		}
	}
}
