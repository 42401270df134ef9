package routing

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is an in-process Cache backend. Each entry carries its own
// expiry, so staleness is decided per key.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// clock is injectable for deterministic TTL tests.
	clock func() time.Time
}

type memoryEntry struct {
	rules     []RoutingRule
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), clock: time.Now}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]RoutingRule, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || !c.clock().Before(e.expiresAt) {
		return nil, false, nil
	}
	out := make([]RoutingRule, len(e.rules))
	copy(out, e.rules)
	return out, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, rules []RoutingRule, ttl time.Duration) error {
	stored := make([]RoutingRule, len(rules))
	copy(stored, rules)

	c.mu.Lock()
	c.entries[key] = memoryEntry{rules: stored, expiresAt: c.clock().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
