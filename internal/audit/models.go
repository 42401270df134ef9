package audit

import "time"

// Event is an immutable, append-only audit log record.
//
// Invariants:
// - Events are never updated or deleted.
// - organization_id is required for tenancy isolation.
// - Audit capture is best-effort; never block routing flows on audit failures.
//
// Storage recommendation (Postgres):
// - Table audit_events with an INSERT-only policy.
// - Optional: partition by time for retention.
type Event struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// Target identifiers (optional, depending on the event type).
	MessageID      string `json:"message_id,omitempty" db:"message_id"`
	ConversationID string `json:"conversation_id,omitempty" db:"conversation_id"`
	RuleID         string `json:"rule_id,omitempty" db:"rule_id"`
	ActionType     string `json:"action_type,omitempty" db:"action_type"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeMessageRouted EventType = "message_routed"
	EventTypeActionFailed  EventType = "action_failed"
	EventTypeRuleChanged   EventType = "rule_changed"
)
