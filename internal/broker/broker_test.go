package broker

import (
	"context"
	"testing"
)

func TestNewWorkItem(t *testing.T) {
	item := NewWorkItem(TypeAgentAssignment, map[string]any{"agent_id": "a-1"}, 5)
	if item.ID == "" {
		t.Fatal("expected generated id")
	}
	if item.Type != TypeAgentAssignment {
		t.Fatalf("type = %q", item.Type)
	}
	if item.Attempts != 0 {
		t.Fatalf("attempts must start at zero, got %d", item.Attempts)
	}
	if item.MaxAttempts != 5 {
		t.Fatalf("max_attempts = %d", item.MaxAttempts)
	}
	if item.EnqueuedAt.IsZero() {
		t.Fatal("expected enqueued_at set")
	}
}

func TestNewWorkItem_DefaultsMaxAttempts(t *testing.T) {
	for _, n := range []int{0, -1} {
		if got := NewWorkItem(TypeOutboundMessage, nil, n).MaxAttempts; got != DefaultMaxAttempts {
			t.Fatalf("max_attempts = %d, want %d", got, DefaultMaxAttempts)
		}
	}
}

func TestMemoryBroker_QueuesAreIndependent(t *testing.T) {
	b := NewMemoryBroker()

	if err := b.Submit(context.Background(), QueueRoutingAssignment, NewWorkItem(TypeAgentAssignment, nil, 0)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := b.Submit(context.Background(), QueueWebhookDelivery, NewWorkItem(TypeWebhookDelivery, nil, 0)); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if n := len(b.Items(QueueRoutingAssignment)); n != 1 {
		t.Fatalf("routing-assignment items = %d", n)
	}
	if n := len(b.Items(QueueWebhookDelivery)); n != 1 {
		t.Fatalf("webhook-delivery items = %d", n)
	}
	if n := len(b.Items(QueueMessageDelivery)); n != 0 {
		t.Fatalf("message-delivery items = %d", n)
	}
}
