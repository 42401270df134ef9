package routing

import (
	"fmt"
)

// ActionType identifies one of the closed set of routing effects.
type ActionType string

const (
	ActionAssignToAgent  ActionType = "assign_to_agent"
	ActionAssignToTeam   ActionType = "assign_to_team"
	ActionSetPriority    ActionType = "set_priority"
	ActionAddTags        ActionType = "add_tags"
	ActionTriggerWebhook ActionType = "trigger_webhook"
	ActionAutoRespond    ActionType = "auto_respond"
	ActionEscalate       ActionType = "escalate"
)

// RoutingAction is the stored/wire shape of one effect: a type plus a mapping
// of named arguments specific to that type.
//
// Execution never dispatches on the raw map; Decode turns it into one of the
// typed ActionParams variants first, so an unknown type or malformed
// parameters fail in one place.
type RoutingAction struct {
	Type       ActionType     `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// ActionParams is the closed set of typed action payloads.
type ActionParams interface {
	actionParams()
}

type AssignAgentParams struct {
	AgentID string
}

type AssignTeamParams struct {
	TeamID string
}

type SetPriorityParams struct {
	Priority string
}

type AddTagsParams struct {
	Tags []string
}

type TriggerWebhookParams struct {
	URL   string
	Event string
}

type AutoRespondParams struct {
	Template string
}

type EscalateParams struct {
	Level int
}

func (AssignAgentParams) actionParams()    {}
func (AssignTeamParams) actionParams()     {}
func (SetPriorityParams) actionParams()    {}
func (AddTagsParams) actionParams()        {}
func (TriggerWebhookParams) actionParams() {}
func (AutoRespondParams) actionParams()    {}
func (EscalateParams) actionParams()       {}

// Decode converts the stored action into its typed variant.
func (a RoutingAction) Decode() (ActionParams, error) {
	switch a.Type {
	case ActionAssignToAgent:
		id := stringParam(a.Parameters, "agent_id")
		if id == "" {
			return nil, fmt.Errorf("routing: assign_to_agent requires agent_id")
		}
		return AssignAgentParams{AgentID: id}, nil

	case ActionAssignToTeam:
		id := stringParam(a.Parameters, "team_id")
		if id == "" {
			return nil, fmt.Errorf("routing: assign_to_team requires team_id")
		}
		return AssignTeamParams{TeamID: id}, nil

	case ActionSetPriority:
		p := stringParam(a.Parameters, "priority")
		if p == "" {
			return nil, fmt.Errorf("routing: set_priority requires priority")
		}
		return SetPriorityParams{Priority: p}, nil

	case ActionAddTags:
		tags := stringsParam(a.Parameters, "tags")
		if len(tags) == 0 {
			return nil, fmt.Errorf("routing: add_tags requires tags")
		}
		return AddTagsParams{Tags: tags}, nil

	case ActionTriggerWebhook:
		url := stringParam(a.Parameters, "url")
		if url == "" {
			return nil, fmt.Errorf("routing: trigger_webhook requires url")
		}
		return TriggerWebhookParams{URL: url, Event: stringParam(a.Parameters, "event")}, nil

	case ActionAutoRespond:
		tmpl := stringParam(a.Parameters, "template")
		if tmpl == "" {
			tmpl = stringParam(a.Parameters, "message")
		}
		if tmpl == "" {
			return nil, fmt.Errorf("routing: auto_respond requires template")
		}
		return AutoRespondParams{Template: tmpl}, nil

	case ActionEscalate:
		return EscalateParams{Level: intParam(a.Parameters, "level")}, nil

	default:
		return nil, fmt.Errorf("routing: unknown action type %q", a.Type)
	}
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func stringsParam(params map[string]any, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func intParam(params map[string]any, key string) int {
	switch t := params[key].(type) {
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}
