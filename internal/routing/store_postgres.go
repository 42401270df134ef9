package routing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrRuleNotFound = errors.New("routing: rule not found")

// PostgresRuleStore persists routing rules. Conditions and actions are stored
// as JSONB columns on the routing_rules table.
//
// LoadRules returns rules ordered by priority DESC, created_at ASC. The
// engine evaluates strictly in returned order, so this ORDER BY is where rule
// priority takes effect.
type PostgresRuleStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresRuleStore(db *sql.DB) *PostgresRuleStore {
	return &PostgresRuleStore{db: db, clock: time.Now}
}

func (s *PostgresRuleStore) LoadRules(ctx context.Context, organizationID string) ([]RoutingRule, error) {
	if organizationID == "" {
		return nil, errors.New("routing: organization_id required")
	}

	const q = `
		SELECT id, name, organization_id, priority, conditions, actions, is_active, created_at, updated_at
		FROM routing_rules
		WHERE organization_id = $1
		ORDER BY priority DESC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, q, organizationID)
	if err != nil {
		return nil, fmt.Errorf("routing: load rules: %w", err)
	}
	defer rows.Close()

	var out []RoutingRule
	for rows.Next() {
		var r RoutingRule
		var conds, acts []byte
		if err := rows.Scan(&r.ID, &r.Name, &r.OrganizationID, &r.Priority, &conds, &acts, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("routing: scan rule: %w", err)
		}
		if err := json.Unmarshal(conds, &r.Conditions); err != nil {
			return nil, fmt.Errorf("routing: rule %s conditions: %w", r.ID, err)
		}
		if err := json.Unmarshal(acts, &r.Actions); err != nil {
			return nil, fmt.Errorf("routing: rule %s actions: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateRule inserts a rule, assigning id and timestamps.
func (s *PostgresRuleStore) CreateRule(ctx context.Context, rule RoutingRule) (RoutingRule, error) {
	if rule.OrganizationID == "" || rule.Name == "" {
		return RoutingRule{}, errors.New("routing: organization_id and name required")
	}

	now := s.clock().UTC()
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.CreatedAt = now
	rule.UpdatedAt = now

	conds, err := json.Marshal(rule.Conditions)
	if err != nil {
		return RoutingRule{}, fmt.Errorf("routing: marshal conditions: %w", err)
	}
	acts, err := json.Marshal(rule.Actions)
	if err != nil {
		return RoutingRule{}, fmt.Errorf("routing: marshal actions: %w", err)
	}

	const q = `
		INSERT INTO routing_rules
			(id, name, organization_id, priority, conditions, actions, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := s.db.ExecContext(ctx, q,
		rule.ID, rule.Name, rule.OrganizationID, rule.Priority, conds, acts, rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	); err != nil {
		return RoutingRule{}, fmt.Errorf("routing: insert rule: %w", err)
	}
	return rule, nil
}

// SetRuleActive flips a rule's isActive flag, scoped to the tenant.
func (s *PostgresRuleStore) SetRuleActive(ctx context.Context, organizationID, ruleID string, active bool) error {
	if organizationID == "" || ruleID == "" {
		return errors.New("routing: organization_id and rule id required")
	}

	const q = `
		UPDATE routing_rules
		SET is_active = $3, updated_at = $4
		WHERE organization_id = $1 AND id = $2`
	res, err := s.db.ExecContext(ctx, q, organizationID, ruleID, active, s.clock().UTC())
	if err != nil {
		return fmt.Errorf("routing: update rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	return nil
}
