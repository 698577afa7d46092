// Package mutex serialises critical sections that must not interleave, such as the
// read-decide-write cycle of an admission. Keys are always taken in sorted order so
// two callers asking for overlapping key sets cannot deadlock.
package mutex

import (
	"context"
	"errors"
	"lodge/config"
	"slices"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	BackendLocal = "local"
	BackendRedis = "redis"
)

// ErrLockTimeout is returned when a key stays held past the wait window.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Release gives back every key obtained by one Acquire call. It is safe to call more than once.
type Release func()

type Locker interface {
	Acquire(ctx context.Context, keys ...string) (Release, error)
}

// New picks the backend from configuration. The redis backend is shared by every
// instance pointed at the same redis, the local one only by goroutines of this process.
func New(config *config.Config, client *goRedis.Client) Locker {
	wait := time.Duration(config.App.Lock.WaitMillis) * time.Millisecond

	if config.App.Lock.Backend == BackendLocal || client == nil {
		log.Info().Dur("wait", wait).Msg("Using in-process lock backend")

		return NewLocal(wait)
	}

	ttl := time.Duration(config.App.Lock.TTLMillis) * time.Millisecond

	log.Info().Dur("wait", wait).Dur("ttl", ttl).Msg("Using redis lock backend")

	return NewRedis(client, ttl, wait)
}

func normalizeKeys(keys []string) []string {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)

	return slices.Compact(sorted)
}
