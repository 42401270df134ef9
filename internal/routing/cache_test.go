package routing

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingStore struct {
	rules []RoutingRule
	err   error
	loads int
}

func (s *countingStore) LoadRules(ctx context.Context, organizationID string) ([]RoutingRule, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.rules, nil
}

func TestRuleCache_HitWithinTTLLoadsOnce(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	mem := NewMemoryCache()
	mem.clock = func() time.Time { return now }

	store := &countingStore{rules: []RoutingRule{{ID: "r-1", OrganizationID: "org-1", IsActive: true}}}
	rc := NewRuleCache(store, mem, 5*time.Minute, nil)

	first, err := rc.GetRules(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := rc.GetRules(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if store.loads != 1 {
		t.Fatalf("expected exactly one store load, got %d", store.loads)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Fatalf("expected identical rule lists, got %v / %v", first, second)
	}
}

func TestRuleCache_TTLExpiryTriggersExactlyOneReload(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	mem := NewMemoryCache()
	mem.clock = func() time.Time { return now }

	store := &countingStore{rules: []RoutingRule{{ID: "r-1", OrganizationID: "org-1"}}}
	rc := NewRuleCache(store, mem, 5*time.Minute, nil)

	if _, err := rc.GetRules(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	// Advance past the TTL window.
	now = now.Add(5*time.Minute + time.Second)

	if _, err := rc.GetRules(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.loads != 2 {
		t.Fatalf("expected one reload after expiry, got %d loads", store.loads)
	}

	// And the reload refreshed the window.
	if _, err := rc.GetRules(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.loads != 2 {
		t.Fatalf("expected no further load within the fresh window, got %d", store.loads)
	}
}

func TestRuleCache_StalenessIsPerTenant(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	mem := NewMemoryCache()
	mem.clock = func() time.Time { return now }

	store := &countingStore{rules: []RoutingRule{{ID: "r-1"}}}
	rc := NewRuleCache(store, mem, 5*time.Minute, nil)

	if _, err := rc.GetRules(context.Background(), "org-a"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	now = now.Add(4 * time.Minute)
	if _, err := rc.GetRules(context.Background(), "org-b"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	now = now.Add(2 * time.Minute)

	// org-a is past its own TTL; org-b's fresher entry must not validate it.
	if _, err := rc.GetRules(context.Background(), "org-a"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.loads != 3 {
		t.Fatalf("expected per-tenant expiry to reload org-a, got %d loads", store.loads)
	}

	// org-b is still within its window.
	if _, err := rc.GetRules(context.Background(), "org-b"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.loads != 3 {
		t.Fatalf("org-b should still be cached, got %d loads", store.loads)
	}
}

func TestRuleCache_StoreFailureIsRuleLoadError(t *testing.T) {
	store := &countingStore{err: errors.New("connection refused")}
	rc := NewRuleCache(store, NewMemoryCache(), time.Minute, nil)

	_, err := rc.GetRules(context.Background(), "org-1")
	var rle *RuleLoadError
	if !errors.As(err, &rle) {
		t.Fatalf("expected RuleLoadError, got %v", err)
	}
	if rle.OrganizationID != "org-1" {
		t.Fatalf("unexpected organization in error: %q", rle.OrganizationID)
	}
}

func TestRuleCache_InvalidateForcesReload(t *testing.T) {
	store := &countingStore{rules: []RoutingRule{{ID: "r-1"}}}
	rc := NewRuleCache(store, NewMemoryCache(), time.Hour, nil)

	if _, err := rc.GetRules(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := rc.Invalidate(context.Background(), "org-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := rc.GetRules(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if store.loads != 2 {
		t.Fatalf("expected reload after invalidation, got %d loads", store.loads)
	}
}

func TestRuleCache_InactiveRulesAreReturned(t *testing.T) {
	// isActive filtering belongs to the engine, not the cache.
	store := &countingStore{rules: []RoutingRule{{ID: "r-1", IsActive: false}, {ID: "r-2", IsActive: true}}}
	rc := NewRuleCache(store, NewMemoryCache(), time.Minute, nil)

	rules, err := rc.GetRules(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("cache must return inactive rules too, got %d", len(rules))
	}
}
