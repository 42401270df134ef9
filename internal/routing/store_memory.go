package routing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRuleStore is an in-memory RuleStore useful for tests and local
// wiring. It mirrors the Postgres store's return order (priority DESC,
// created_at ASC) so engine behavior matches across backends.
type MemoryRuleStore struct {
	mu    sync.RWMutex
	rules map[string][]RoutingRule // organization_id -> rules in insert order
	clock func() time.Time
}

func NewMemoryRuleStore() *MemoryRuleStore {
	return &MemoryRuleStore{rules: make(map[string][]RoutingRule), clock: time.Now}
}

func (s *MemoryRuleStore) LoadRules(ctx context.Context, organizationID string) ([]RoutingRule, error) {
	if organizationID == "" {
		return nil, errors.New("routing: organization_id required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RoutingRule, len(s.rules[organizationID]))
	copy(out, s.rules[organizationID])
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryRuleStore) CreateRule(ctx context.Context, rule RoutingRule) (RoutingRule, error) {
	if rule.OrganizationID == "" || rule.Name == "" {
		return RoutingRule{}, errors.New("routing: organization_id and name required")
	}
	now := s.clock().UTC()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now

	s.mu.Lock()
	s.rules[rule.OrganizationID] = append(s.rules[rule.OrganizationID], rule)
	s.mu.Unlock()
	return rule, nil
}

func (s *MemoryRuleStore) SetRuleActive(ctx context.Context, organizationID, ruleID string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rules[organizationID] {
		if r.ID == ruleID {
			s.rules[organizationID][i].IsActive = active
			s.rules[organizationID][i].UpdatedAt = s.clock().UTC()
			return nil
		}
	}
	return ErrRuleNotFound
}
