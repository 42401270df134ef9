package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.OrganizationID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogMessageRouted records which rules matched for a message.
func (s *Service) LogMessageRouted(ctx context.Context, organizationID, messageID string, appliedRules []string) error {
	meta, _ := json.Marshal(map[string]any{"applied_rules": appliedRules})
	return s.Append(ctx, Event{
		OrganizationID: organizationID,
		Type:           EventTypeMessageRouted,
		MessageID:      messageID,
		Message:        "routing rules applied",
		Metadata:       string(meta),
	})
}

// LogActionFailure records a per-action dispatch failure.
func (s *Service) LogActionFailure(ctx context.Context, organizationID, messageID, actionType string, dispatchErr error) error {
	msg := "action dispatch failed"
	if dispatchErr != nil {
		msg = dispatchErr.Error()
	}
	return s.Append(ctx, Event{
		OrganizationID: organizationID,
		Type:           EventTypeActionFailed,
		MessageID:      messageID,
		ActionType:     actionType,
		Message:        msg,
	})
}

// LogRuleChanged records a rule-management write (create/activate/deactivate).
func (s *Service) LogRuleChanged(ctx context.Context, organizationID, ruleID, change string) error {
	return s.Append(ctx, Event{
		OrganizationID: organizationID,
		Type:           EventTypeRuleChanged,
		RuleID:         ruleID,
		Message:        change,
	})
}
