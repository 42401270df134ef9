package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestAppend_FillsDefaults(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.clock = func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	err := svc.Append(context.Background(), Event{
		OrganizationID: "org-1",
		Type:           EventTypeMessageRouted,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	events := repo.Events()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].ID == "" {
		t.Fatal("expected generated event id")
	}
	if !events[0].CreatedAt.Equal(svc.clock()) {
		t.Fatalf("created_at = %v", events[0].CreatedAt)
	}
}

func TestAppend_Validation(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	tests := []struct {
		name  string
		event Event
	}{
		{"missing organization", Event{Type: EventTypeMessageRouted}},
		{"missing type", Event{OrganizationID: "org-1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Append(context.Background(), tc.event); !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("expected ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestLogMessageRouted(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogMessageRouted(context.Background(), "org-1", "m-1", []string{"r-1", "r-2"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	e := repo.Events()[0]
	if e.Type != EventTypeMessageRouted || e.MessageID != "m-1" {
		t.Fatalf("unexpected event: %+v", e)
	}
	var meta struct {
		AppliedRules []string `json:"applied_rules"`
	}
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata not json: %v", err)
	}
	if len(meta.AppliedRules) != 2 || meta.AppliedRules[1] != "r-2" {
		t.Fatalf("unexpected metadata: %s", e.Metadata)
	}
}

func TestLogActionFailure(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogActionFailure(context.Background(), "org-1", "m-1", "trigger_webhook", errors.New("broker unreachable")); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	e := repo.Events()[0]
	if e.Type != EventTypeActionFailed {
		t.Fatalf("type = %q", e.Type)
	}
	if e.ActionType != "trigger_webhook" {
		t.Fatalf("action_type = %q", e.ActionType)
	}
	if e.Message != "broker unreachable" {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestLogRuleChanged(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogRuleChanged(context.Background(), "org-1", "r-1", "rule deactivated"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	e := repo.Events()[0]
	if e.Type != EventTypeRuleChanged || e.RuleID != "r-1" || e.Message != "rule deactivated" {
		t.Fatalf("unexpected event: %+v", e)
	}
}
