package conversation

import "time"

// Conversation is a tenant-scoped customer thread.
//
// Multi-tenant invariant: OrganizationID is required on every row.
//
// The routing engine never reads this model; it only pushes priority, tag and
// assignment updates through the Service.
type Conversation struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	Status   Status `json:"status" db:"status"`
	Priority string `json:"priority" db:"priority"`

	Tags       []string `json:"tags" db:"tags"`
	AssignedTo string   `json:"assigned_to,omitempty" db:"assigned_to"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusOpen     Status = "open"
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
)

// Priority levels. Keep these stable; routing rules reference them by name.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}
