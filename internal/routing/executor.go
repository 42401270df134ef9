package routing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"support-platform/internal/broker"
)

// DefaultSubmitTimeout bounds each individual action submission so a slow
// broker or conversation store cannot hang the whole pipeline.
const DefaultSubmitTimeout = 5 * time.Second

// ConversationState is the external conversation-state collaborator.
// Updates are fire-and-forget from the executor's point of view.
type ConversationState interface {
	SetPriority(ctx context.Context, organizationID, conversationID, priority string) error
	AddTags(ctx context.Context, organizationID, conversationID string, tags []string) error
}

// ActionAuditLogger records per-action dispatch failures (best-effort).
type ActionAuditLogger interface {
	LogActionFailure(ctx context.Context, organizationID, messageID string, actionType string, dispatchErr error) error
}

// PartialResult is the executor's contribution to a RoutingResult.
type PartialResult struct {
	// Executed lists the actions that were applied or submitted successfully,
	// in execution order. A failed action is simply absent.
	Executed []RoutingAction

	AssignedTo       string
	Priority         string
	Tags             []string
	AutoResponse     string
	WebhookTriggered bool
}

// Executor applies routing actions one at a time.
//
// Each action runs independently: a failure is logged and recorded, and
// execution proceeds to the next action. Execute itself never fails.
// Broker submissions are fire-and-forget; completion is the workers' concern.
type Executor struct {
	broker        broker.Submitter
	conversations ConversationState
	audit         ActionAuditLogger
	log           *slog.Logger

	submitTimeout time.Duration
	maxAttempts   int
}

func NewExecutor(b broker.Submitter, conv ConversationState, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		broker:        b,
		conversations: conv,
		log:           log,
		submitTimeout: DefaultSubmitTimeout,
		maxAttempts:   broker.DefaultMaxAttempts,
	}
}

// WithAudit attaches a dispatch-failure audit sink.
func (x *Executor) WithAudit(a ActionAuditLogger) *Executor {
	x.audit = a
	return x
}

// WithSubmitTimeout overrides the per-action submission bound.
func (x *Executor) WithSubmitTimeout(d time.Duration) *Executor {
	if d > 0 {
		x.submitTimeout = d
	}
	return x
}

// WithMaxAttempts sets the delivery attempt limit stamped on work items.
func (x *Executor) WithMaxAttempts(n int) *Executor {
	if n > 0 {
		x.maxAttempts = n
	}
	return x
}

// Execute applies each action in order. Later writes to the same result
// field overwrite earlier ones (last-write-wins), so execution order must
// stay deterministic.
func (x *Executor) Execute(ctx context.Context, msg *Message, actions []RoutingAction) PartialResult {
	var out PartialResult
	for _, action := range actions {
		if err := x.apply(ctx, msg, action, &out); err != nil {
			x.log.Warn("action dispatch failed",
				"action", action.Type,
				"message_id", msg.ID,
				"organization_id", msg.OrganizationID,
				"err", err,
			)
			if x.audit != nil {
				_ = x.audit.LogActionFailure(ctx, msg.OrganizationID, msg.ID, string(action.Type), err)
			}
			continue
		}
		out.Executed = append(out.Executed, action)
	}
	return out
}

func (x *Executor) apply(ctx context.Context, msg *Message, action RoutingAction, out *PartialResult) error {
	params, err := action.Decode()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, x.submitTimeout)
	defer cancel()

	switch p := params.(type) {
	case AssignAgentParams:
		item := broker.NewWorkItem(broker.TypeAgentAssignment, map[string]any{
			"organization_id": msg.OrganizationID,
			"conversation_id": msg.ConversationID,
			"message_id":      msg.ID,
			"agent_id":        p.AgentID,
		}, x.maxAttempts)
		if err := x.submit(ctx, broker.QueueRoutingAssignment, item); err != nil {
			return err
		}
		// Recorded at submit time; the assignment worker confirms later.
		out.AssignedTo = p.AgentID

	case AssignTeamParams:
		// Extension point: team assignment has no worker yet.
		x.log.Info("team assignment requested",
			"team_id", p.TeamID, "message_id", msg.ID, "organization_id", msg.OrganizationID)

	case SetPriorityParams:
		x.notifyConversation(ctx, msg, "priority update", func(cs ConversationState) error {
			return cs.SetPriority(ctx, msg.OrganizationID, msg.ConversationID, p.Priority)
		})
		out.Priority = p.Priority

	case AddTagsParams:
		x.notifyConversation(ctx, msg, "tag update", func(cs ConversationState) error {
			return cs.AddTags(ctx, msg.OrganizationID, msg.ConversationID, p.Tags)
		})
		out.Tags = append(out.Tags, p.Tags...)

	case TriggerWebhookParams:
		item := broker.NewWorkItem(broker.TypeWebhookDelivery, map[string]any{
			"organization_id": msg.OrganizationID,
			"message_id":      msg.ID,
			"url":             p.URL,
			"event":           p.Event,
		}, x.maxAttempts)
		if err := x.submit(ctx, broker.QueueWebhookDelivery, item); err != nil {
			return err
		}
		// Submission succeeded; delivery is retried by the webhook worker.
		out.WebhookTriggered = true

	case AutoRespondParams:
		text := renderAutoResponse(p.Template, msg)
		item := broker.NewWorkItem(broker.TypeOutboundMessage, map[string]any{
			"organization_id": msg.OrganizationID,
			"conversation_id": msg.ConversationID,
			"in_reply_to":     msg.ID,
			"text":            text,
		}, x.maxAttempts)
		if err := x.submit(ctx, broker.QueueMessageDelivery, item); err != nil {
			return err
		}
		// The rendered text is kept for audit; delivery is unconfirmed.
		out.AutoResponse = text

	case EscalateParams:
		// Extension point: no escalation-level protocol defined yet.
		x.log.Info("escalation requested",
			"level", p.Level, "message_id", msg.ID, "organization_id", msg.OrganizationID)
	}

	return nil
}

func (x *Executor) submit(ctx context.Context, queue string, item broker.WorkItem) error {
	if x.broker == nil {
		return errBrokerNotConfigured
	}
	return x.broker.Submit(ctx, queue, item)
}

// notifyConversation delivers a state update best-effort. The result field is
// recorded by the caller whether or not the collaborator accepted the update.
func (x *Executor) notifyConversation(ctx context.Context, msg *Message, what string, fn func(ConversationState) error) {
	if x.conversations == nil {
		return
	}
	if err := fn(x.conversations); err != nil {
		x.log.Warn("conversation "+what+" not delivered",
			"message_id", msg.ID, "organization_id", msg.OrganizationID, "err", err)
	}
}

// renderAutoResponse fills the template placeholders supported by the
// auto-response action. Unknown placeholders pass through untouched.
func renderAutoResponse(template string, msg *Message) string {
	sender := msg.Sender.Name
	if sender == "" {
		sender = msg.Sender.Email
	}
	category := ""
	if msg.Classification != nil {
		category = msg.Classification.Category
	}
	return strings.NewReplacer(
		"{{sender}}", sender,
		"{{category}}", category,
	).Replace(template)
}
