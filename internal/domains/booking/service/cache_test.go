package service_test

import (
	"context"
	"encoding/json"
	"lodge/shared/cache"
	"strings"
	"sync"
)

// memoryCache is a goroutine safe stand-in for redis; the service writes to it from
// background goroutines that may outlive a gomock controller.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Save(_ context.Context, key string, value any, _ int) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = raw

	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, value any) error {
	c.mu.Lock()
	raw, ok := c.entries[key]
	c.mu.Unlock()

	if !ok {
		return cache.Nil
	}

	return json.Unmarshal(raw, value)
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

func (c *memoryCache) Clear(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")

	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}

	return nil
}

func (c *memoryCache) Increment(_ context.Context, key string, _ int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var count int64
	if raw, ok := c.entries[key]; ok {
		if err := json.Unmarshal(raw, &count); err != nil {
			return 0, err
		}
	}

	count++

	raw, err := json.Marshal(count)
	if err != nil {
		return 0, err
	}

	c.entries[key] = raw

	return count, nil
}
