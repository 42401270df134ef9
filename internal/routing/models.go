package routing

import "time"

// RoutingRule is a tenant-scoped predicate-plus-actions record.
//
// Multi-tenant invariant: OrganizationID is required on every rule; rules are
// evaluated and applied per-tenant and never cross tenant boundaries.
//
// Rules are authored through the rule-management surface; the router only
// reads them.
type RoutingRule struct {
	ID             string `json:"id" db:"id"`
	Name           string `json:"name" db:"name"`
	OrganizationID string `json:"organization_id" db:"organization_id"`

	// Priority influences store-return order (higher first); the engine itself
	// evaluates rules strictly in the order the rule source returns them.
	Priority int `json:"priority" db:"priority"`

	Conditions []RoutingCondition `json:"conditions" db:"conditions"`
	Actions    []RoutingAction    `json:"actions" db:"actions"`

	IsActive bool `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ConditionType selects which message field a condition reads.
type ConditionType string

const (
	ConditionContentContains  ConditionType = "content_contains"
	ConditionSenderEmail      ConditionType = "sender_email"
	ConditionAIClassification ConditionType = "ai_classification"
	ConditionSentiment        ConditionType = "sentiment"
	ConditionUrgency          ConditionType = "urgency"
	ConditionTimeOfDay        ConditionType = "time_of_day"
	ConditionCustom           ConditionType = "custom"
)

// Operator is the comparison applied between the derived message value and
// the condition's literal.
type Operator string

const (
	OperatorEquals      Operator = "equals"
	OperatorContains    Operator = "contains"
	OperatorStartsWith  Operator = "starts_with"
	OperatorEndsWith    Operator = "ends_with"
	OperatorRegex       Operator = "regex"
	OperatorGreaterThan Operator = "greater_than"
	OperatorLessThan    Operator = "less_than"
	OperatorIn          Operator = "in"
	OperatorNotIn       Operator = "not_in"
)

// RoutingCondition is one atomic test. All conditions of a rule must hold
// (pure AND) for the rule to match.
//
// Value is an arbitrary comparison literal (JSON-shaped: string, number,
// bool, or array for in/not_in). Field selects a sub-path for the
// ai_classification and custom types.
type RoutingCondition struct {
	Type     ConditionType `json:"type"`
	Operator Operator      `json:"operator"`
	Value    any           `json:"value"`
	Field    string        `json:"field,omitempty"`
}

// Message is the classified inbound message the router consumes.
//
// The router never mutates a Message; it only reads it. Classification is
// attached by the upstream classifier before the message reaches the router
// and may be absent if classification failed upstream.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	OrganizationID string `json:"organization_id"`

	Content MessageContent `json:"content"`
	Sender  MessageSender  `json:"sender"`

	Classification *Classification `json:"classification,omitempty"`
}

type MessageContent struct {
	Text string `json:"text"`
}

type MessageSender struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Classification is the upstream AI annotation block.
type Classification struct {
	Category  string    `json:"category"`
	Intent    string    `json:"intent"`
	Sentiment Sentiment `json:"sentiment"`
	Urgency   string    `json:"urgency"`
}

type Sentiment struct {
	Label string  `json:"label"`
	Score float64 `json:"score,omitempty"`
}

// RoutingResult describes what happened during a single Route invocation.
//
// AppliedRules and Actions are append-only logs of this invocation; no
// partial result is silently dropped. Broker-side work referenced here is
// submitted, not confirmed complete.
type RoutingResult struct {
	MessageID string `json:"message_id"`

	// AppliedRules lists matched rule ids in evaluation order.
	AppliedRules []string `json:"applied_rules"`

	// Actions is the flattened list of actions actually executed.
	Actions []RoutingAction `json:"actions"`

	AssignedTo   string   `json:"assigned_to,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	AutoResponse string   `json:"auto_response,omitempty"`

	// WebhookTriggered reports submission success, not delivery success.
	WebhookTriggered bool `json:"webhook_triggered"`

	ProcessingTime time.Duration `json:"processing_time"`
}
