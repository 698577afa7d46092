package mutex

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type entry struct {
	ch   chan struct{}
	refs int
}

type localLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
	wait    time.Duration
}

// NewLocal returns an in-process Locker. A zero wait means callers block until the
// key frees up or their context ends.
func NewLocal(wait time.Duration) Locker {
	return &localLocker{
		entries: map[string]*entry{},
		wait:    wait,
	}
}

func (l *localLocker) Acquire(ctx context.Context, keys ...string) (Release, error) {
	if l.wait > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	held := make([]string, 0, len(keys))

	for _, key := range normalizeKeys(keys) {
		if err := l.lock(ctx, key); err != nil {
			l.unlockAll(held)

			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		}

		held = append(held, key)
	}

	var once sync.Once

	return func() { once.Do(func() { l.unlockAll(held) }) }, nil
}

func (l *localLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.forget(key, e)

		return ctx.Err()
	}
}

func (l *localLocker) unlockAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		e := l.entries[keys[i]]
		l.mu.Unlock()

		<-e.ch
		l.forget(keys[i], e)
	}
}

// forget drops the entry once nobody holds or waits for it.
func (l *localLocker) forget(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
