// Package broker produces units of deferred work for asynchronous workers.
//
// The router side of the platform only submits; consumption, retry pacing
// and backoff belong to the workers draining each queue. Submission success
// never implies completion.
package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Logical queue names. Keep these stable; workers subscribe by name.
const (
	QueueRoutingAssignment = "routing-assignment"
	QueueWebhookDelivery   = "webhook-delivery"
	QueueMessageDelivery   = "message-delivery"
)

// Work item types carried on the queues above.
const (
	TypeAgentAssignment = "agent_assignment"
	TypeWebhookDelivery = "webhook_delivery"
	TypeOutboundMessage = "outbound_message"
)

// DefaultMaxAttempts is the delivery attempt limit applied when a submitter
// does not specify one.
const DefaultMaxAttempts = 3

// WorkItem is one unit of deferred work.
//
// Attempts starts at zero and is advanced by the consumer; MaxAttempts bounds
// consumer-side retries.
type WorkItem struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"max_attempts"`
	EnqueuedAt  time.Time      `json:"enqueued_at"`
}

// NewWorkItem builds a work item with a fresh id.
func NewWorkItem(itemType string, payload map[string]any, maxAttempts int) WorkItem {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return WorkItem{
		ID:          uuid.NewString(),
		Type:        itemType,
		Payload:     payload,
		MaxAttempts: maxAttempts,
		EnqueuedAt:  time.Now().UTC(),
	}
}

// Submitter hands a work item to a named queue.
//
// Implementations must return an error only when the submission itself
// failed; whether the item is ever consumed is out of the producer's hands.
type Submitter interface {
	Submit(ctx context.Context, queue string, item WorkItem) error
}
