package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// RuleSource supplies the tenant's rule list. Normally a *RuleCache.
type RuleSource interface {
	GetRules(ctx context.Context, organizationID string) ([]RoutingRule, error)
}

// ActionExecutor applies an accumulated action list. Normally an *Executor.
type ActionExecutor interface {
	Execute(ctx context.Context, msg *Message, actions []RoutingAction) PartialResult
}

// RouteAuditLogger records routing outcomes (best-effort).
type RouteAuditLogger interface {
	LogMessageRouted(ctx context.Context, organizationID, messageID string, appliedRules []string) error
}

// Engine matches a tenant's rules against a classified message and dispatches
// the accumulated actions.
//
// Single-pass pipeline: Load -> Match -> Execute. No backtracking, no retry
// at this layer; retries belong to the broker that receives submitted work.
//
// Rules are evaluated in the order the rule source returns them; the engine
// never re-sorts. A rule matches iff every condition holds (pure AND).
// When multiple matched rules set the same result field, the last rule
// evaluated wins.
type Engine struct {
	rules    RuleSource
	executor ActionExecutor
	eval     *Evaluator
	audit    RouteAuditLogger
	log      *slog.Logger

	// now is injectable for deterministic tests.
	now func() time.Time
}

func NewEngine(rules RuleSource, executor ActionExecutor, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		rules:    rules,
		executor: executor,
		eval:     NewEvaluator(),
		log:      log,
		now:      time.Now,
	}
}

// WithAudit attaches a routing-outcome audit sink.
func (e *Engine) WithAudit(a RouteAuditLogger) *Engine {
	e.audit = a
	return e
}

// Route decides what happens to one classified message.
//
// The only error it returns is a *RuleLoadError (rule store/cache
// unreachable); everything downstream of a successful load is absorbed into
// the RoutingResult.
func (e *Engine) Route(ctx context.Context, msg *Message) (RoutingResult, error) {
	if msg == nil || msg.ID == "" || msg.OrganizationID == "" {
		return RoutingResult{}, ErrInvalidMessage
	}
	if e.rules == nil {
		return RoutingResult{}, errors.New("routing: rule source not configured")
	}

	start := e.now()

	rules, err := e.rules.GetRules(ctx, msg.OrganizationID)
	if err != nil {
		var rle *RuleLoadError
		if !errors.As(err, &rle) {
			err = &RuleLoadError{OrganizationID: msg.OrganizationID, Err: err}
		}
		return RoutingResult{}, err
	}

	result := RoutingResult{MessageID: msg.ID}

	var pending []RoutingAction
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if !e.matches(rule, msg) {
			continue
		}
		result.AppliedRules = append(result.AppliedRules, rule.ID)
		pending = append(pending, rule.Actions...)
	}

	if len(pending) > 0 && e.executor != nil {
		mergePartial(&result, e.executor.Execute(ctx, msg, pending))
	}

	result.ProcessingTime = e.now().Sub(start)

	e.log.Debug("message routed",
		"message_id", msg.ID,
		"organization_id", msg.OrganizationID,
		"applied_rules", len(result.AppliedRules),
		"actions", len(result.Actions),
		"duration_ms", float64(result.ProcessingTime.Milliseconds()),
	)

	if e.audit != nil && len(result.AppliedRules) > 0 {
		_ = e.audit.LogMessageRouted(ctx, msg.OrganizationID, msg.ID, result.AppliedRules)
	}

	return result, nil
}

// matches reports whether every condition of the rule holds. A rule with no
// conditions matches vacuously.
func (e *Engine) matches(rule RoutingRule, msg *Message) bool {
	for _, cond := range rule.Conditions {
		if !e.eval.Evaluate(cond, msg) {
			return false
		}
	}
	return true
}

func mergePartial(result *RoutingResult, part PartialResult) {
	result.Actions = append(result.Actions, part.Executed...)
	if part.AssignedTo != "" {
		result.AssignedTo = part.AssignedTo
	}
	if part.Priority != "" {
		result.Priority = part.Priority
	}
	if len(part.Tags) > 0 {
		result.Tags = append(result.Tags, part.Tags...)
	}
	if part.AutoResponse != "" {
		result.AutoResponse = part.AutoResponse
	}
	if part.WebhookTriggered {
		result.WebhookTriggered = true
	}
}
