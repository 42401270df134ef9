package routing

import (
	"testing"
	"time"
)

func classifiedMessage() *Message {
	return &Message{
		ID:             "m-1",
		ConversationID: "c-1",
		OrganizationID: "org-1",
		Content:        MessageContent{Text: "This is an URGENT issue with billing"},
		Sender:         MessageSender{Email: "Jane.Doe@Example.com", Name: "Jane"},
		Classification: &Classification{
			Category:  "billing",
			Intent:    "complaint",
			Sentiment: Sentiment{Label: "negative", Score: 0.91},
			Urgency:   "critical",
		},
	}
}

func TestEvaluate_ContentContainsIsLowercasedMessageSideOnly(t *testing.T) {
	e := NewEvaluator()
	msg := classifiedMessage()

	// Message side is lower-cased; the comparison literal is used verbatim.
	if !e.Evaluate(RoutingCondition{Type: ConditionContentContains, Operator: OperatorContains, Value: "urgent"}, msg) {
		t.Fatalf("lowercase literal should match lower-cased content")
	}
	if e.Evaluate(RoutingCondition{Type: ConditionContentContains, Operator: OperatorContains, Value: "URGENT"}, msg) {
		t.Fatalf("uppercase literal must not match: only the message side is lower-cased")
	}
}

func TestEvaluate_OperatorTable(t *testing.T) {
	e := NewEvaluator()
	e.Now = func() time.Time { return time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC) }
	msg := classifiedMessage()

	tests := []struct {
		name string
		cond RoutingCondition
		want bool
	}{
		{"equals sentiment", RoutingCondition{Type: ConditionSentiment, Operator: OperatorEquals, Value: "negative"}, true},
		{"equals sentiment miss", RoutingCondition{Type: ConditionSentiment, Operator: OperatorEquals, Value: "positive"}, false},
		{"equals urgency", RoutingCondition{Type: ConditionUrgency, Operator: OperatorEquals, Value: "critical"}, true},
		{"sender email lowercased", RoutingCondition{Type: ConditionSenderEmail, Operator: OperatorEndsWith, Value: "@example.com"}, true},
		{"sender email starts_with", RoutingCondition{Type: ConditionSenderEmail, Operator: OperatorStartsWith, Value: "jane."}, true},
		{"regex on content", RoutingCondition{Type: ConditionContentContains, Operator: OperatorRegex, Value: "urgent.*billing"}, true},
		{"malformed regex is false", RoutingCondition{Type: ConditionContentContains, Operator: OperatorRegex, Value: "(["}, false},
		{"classification default field", RoutingCondition{Type: ConditionAIClassification, Operator: OperatorEquals, Value: "billing"}, true},
		{"classification explicit field", RoutingCondition{Type: ConditionAIClassification, Operator: OperatorEquals, Value: "complaint", Field: "intent"}, true},
		{"classification nested field", RoutingCondition{Type: ConditionAIClassification, Operator: OperatorEquals, Value: "negative", Field: "sentiment.label"}, true},
		{"time_of_day greater_than", RoutingCondition{Type: ConditionTimeOfDay, Operator: OperatorGreaterThan, Value: 9.0}, true},
		{"time_of_day less_than", RoutingCondition{Type: ConditionTimeOfDay, Operator: OperatorLessThan, Value: 9.0}, false},
		{"time_of_day equals across numeric kinds", RoutingCondition{Type: ConditionTimeOfDay, Operator: OperatorEquals, Value: 14.0}, true},
		{"in with array", RoutingCondition{Type: ConditionUrgency, Operator: OperatorIn, Value: []any{"high", "critical"}}, true},
		{"not_in with array", RoutingCondition{Type: ConditionUrgency, Operator: OperatorNotIn, Value: []any{"low", "medium"}}, true},
		{"in with non-array is false", RoutingCondition{Type: ConditionUrgency, Operator: OperatorIn, Value: "critical"}, false},
		{"not_in with non-array is false", RoutingCondition{Type: ConditionUrgency, Operator: OperatorNotIn, Value: "low"}, false},
		{"custom dotted path", RoutingCondition{Type: ConditionCustom, Operator: OperatorEquals, Value: "Jane", Field: "sender.name"}, true},
		{"custom numeric path", RoutingCondition{Type: ConditionCustom, Operator: OperatorGreaterThan, Value: 0.5, Field: "classification.sentiment.score"}, true},
		{"custom missing path is false", RoutingCondition{Type: ConditionCustom, Operator: OperatorEquals, Value: "x", Field: "sender.phone"}, false},
		{"custom without field is false", RoutingCondition{Type: ConditionCustom, Operator: OperatorEquals, Value: "x"}, false},
		{"unknown type is false", RoutingCondition{Type: "bogus", Operator: OperatorEquals, Value: "x"}, false},
		{"unknown operator is false", RoutingCondition{Type: ConditionUrgency, Operator: "approximately", Value: "critical"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Evaluate(tc.cond, msg); got != tc.want {
				t.Fatalf("Evaluate(%+v) = %v, want %v", tc.cond, got, tc.want)
			}
		})
	}
}

func TestEvaluate_AbsentValueIsFalseForEveryOperator(t *testing.T) {
	e := NewEvaluator()
	unclassified := &Message{
		ID:             "m-2",
		OrganizationID: "org-1",
		Content:        MessageContent{Text: "hello"},
	}

	ops := []Operator{
		OperatorEquals, OperatorContains, OperatorStartsWith, OperatorEndsWith,
		OperatorRegex, OperatorGreaterThan, OperatorLessThan, OperatorIn, OperatorNotIn,
	}
	for _, op := range ops {
		cond := RoutingCondition{Type: ConditionUrgency, Operator: op, Value: []any{"critical"}}
		if e.Evaluate(cond, unclassified) {
			t.Fatalf("operator %q: absent classification must evaluate false", op)
		}
	}

	// The guard takes precedence even for not_in, which would otherwise be
	// vacuously true.
	cond := RoutingCondition{Type: ConditionSentiment, Operator: OperatorNotIn, Value: []any{"positive"}}
	if e.Evaluate(cond, unclassified) {
		t.Fatalf("not_in must be false when the actual value is absent")
	}
}

func TestEvaluate_EqualsIsStrictAcrossTypes(t *testing.T) {
	e := NewEvaluator()
	e.Now = func() time.Time { return time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC) }
	msg := classifiedMessage()

	// A string literal never equals a numeric actual value.
	cond := RoutingCondition{Type: ConditionTimeOfDay, Operator: OperatorEquals, Value: "14"}
	if e.Evaluate(cond, msg) {
		t.Fatalf("string literal must not equal numeric hour")
	}
}

func TestEvaluate_GreaterThanCoercesNumericStrings(t *testing.T) {
	e := NewEvaluator()
	msg := classifiedMessage()

	cond := RoutingCondition{Type: ConditionCustom, Operator: OperatorGreaterThan, Value: "0.5", Field: "classification.sentiment.score"}
	if !e.Evaluate(cond, msg) {
		t.Fatalf("greater_than should coerce a numeric string literal")
	}

	cond.Value = "not-a-number"
	if e.Evaluate(cond, msg) {
		t.Fatalf("non-numeric literal must evaluate false")
	}
}

func TestEvaluate_NilMessage(t *testing.T) {
	e := NewEvaluator()
	if e.Evaluate(RoutingCondition{Type: ConditionUrgency, Operator: OperatorEquals, Value: "critical"}, nil) {
		t.Fatalf("nil message must evaluate false")
	}
}
