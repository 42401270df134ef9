package routing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores rule lists as JSON under routing_rules:{organizationId}
// with a per-key TTL, so cached rules survive process restarts and are shared
// across API instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]RoutingRule, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var rules []RoutingRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		// A corrupt entry is a miss; the caller reloads and overwrites it.
		return nil, false, nil
	}
	return rules, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, rules []RoutingRule, ttl time.Duration) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
