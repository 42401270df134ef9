package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultRuleTTL bounds how long a tenant's rule list is trusted before the
// store is consulted again.
const DefaultRuleTTL = 5 * time.Minute

// RuleStore is the persistent rule source (external collaborator).
// Rule authoring and versioning live outside this core.
type RuleStore interface {
	LoadRules(ctx context.Context, organizationID string) ([]RoutingRule, error)
}

// Cache is the key-value backend behind RuleCache. It is constructed
// explicitly and passed in; there is no process-wide cache state.
//
// Staleness is always keyed per entry: each Set carries its own TTL and a
// Get on an expired entry is a miss. One tenant's refresh can never validate
// another tenant's stale entry.
type Cache interface {
	Get(ctx context.Context, key string) ([]RoutingRule, bool, error)
	Set(ctx context.Context, key string, rules []RoutingRule, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

func ruleCacheKey(organizationID string) string {
	return "routing_rules:" + organizationID
}

// RuleCache serves per-tenant rule lists, reloading from the store on a miss
// or after TTL expiry.
//
// It returns exactly what the store provides; isActive filtering happens in
// the engine. Concurrent misses for the same tenant may reload twice; the
// reload is idempotent so no per-key lock is held.
type RuleCache struct {
	store RuleStore
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

func NewRuleCache(store RuleStore, cache Cache, ttl time.Duration, log *slog.Logger) *RuleCache {
	if ttl <= 0 {
		ttl = DefaultRuleTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &RuleCache{store: store, cache: cache, ttl: ttl, log: log}
}

// GetRules returns the tenant's rule list, serving from cache within the TTL
// window. A cache backend failure is treated as a miss; only a store failure
// makes the rule set unavailable.
func (rc *RuleCache) GetRules(ctx context.Context, organizationID string) ([]RoutingRule, error) {
	if organizationID == "" {
		return nil, errors.New("routing: organization_id required")
	}
	if rc.store == nil {
		return nil, &RuleLoadError{OrganizationID: organizationID, Err: errors.New("rule store not configured")}
	}

	key := ruleCacheKey(organizationID)
	if rc.cache != nil {
		rules, ok, err := rc.cache.Get(ctx, key)
		if err != nil {
			rc.log.Warn("rule cache read failed", "organization_id", organizationID, "err", err)
		} else if ok {
			return rules, nil
		}
	}

	rules, err := rc.store.LoadRules(ctx, organizationID)
	if err != nil {
		return nil, &RuleLoadError{OrganizationID: organizationID, Err: err}
	}

	if rc.cache != nil {
		if err := rc.cache.Set(ctx, key, rules, rc.ttl); err != nil {
			rc.log.Warn("rule cache write failed", "organization_id", organizationID, "err", err)
		}
	}
	return rules, nil
}

// Invalidate drops the cached rule list for a tenant. Rule-management writes
// call this so the next route sees fresh rules immediately.
func (rc *RuleCache) Invalidate(ctx context.Context, organizationID string) error {
	if rc.cache == nil || organizationID == "" {
		return nil
	}
	return rc.cache.Invalidate(ctx, ruleCacheKey(organizationID))
}
