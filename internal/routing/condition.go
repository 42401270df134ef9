package routing

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Evaluator checks a single routing condition against a message.
//
// Contract: Evaluate never fails. Any internal problem (malformed regex,
// type mismatch, missing field) resolves to false, so a bad condition can
// only ever prevent a rule from matching.
type Evaluator struct {
	// Now is injectable for deterministic time_of_day tests.
	Now func() time.Time
}

func NewEvaluator() *Evaluator {
	return &Evaluator{Now: time.Now}
}

// Evaluate reports whether the condition holds for the message.
//
// A condition whose derived actual value is absent evaluates to false under
// every operator; this guard takes precedence over operator semantics.
func (e *Evaluator) Evaluate(cond RoutingCondition, msg *Message) bool {
	if msg == nil {
		return false
	}
	actual := e.actualValue(cond, msg)
	if actual == nil {
		return false
	}
	return applyOperator(cond.Operator, actual, cond.Value)
}

// actualValue derives the message-side comparison value for a condition.
//
// Content and sender email are lower-cased here; the condition's comparison
// value is used verbatim, so rule authors must write lowercase literals for
// case-insensitive matching.
func (e *Evaluator) actualValue(cond RoutingCondition, msg *Message) any {
	switch cond.Type {
	case ConditionContentContains:
		return strings.ToLower(msg.Content.Text)

	case ConditionSenderEmail:
		return strings.ToLower(msg.Sender.Email)

	case ConditionAIClassification:
		if msg.Classification == nil {
			return nil
		}
		field := cond.Field
		if field == "" {
			field = "category"
		}
		return lookupPath(toDocument(msg.Classification), field)

	case ConditionSentiment:
		if msg.Classification == nil {
			return nil
		}
		return msg.Classification.Sentiment.Label

	case ConditionUrgency:
		if msg.Classification == nil {
			return nil
		}
		return msg.Classification.Urgency

	case ConditionTimeOfDay:
		now := e.Now
		if now == nil {
			now = time.Now
		}
		return now().Hour()

	case ConditionCustom:
		if cond.Field == "" {
			return nil
		}
		return lookupPath(toDocument(msg), cond.Field)

	default:
		return nil
	}
}

func applyOperator(op Operator, actual, expected any) bool {
	switch op {
	case OperatorEquals:
		return strictEqual(actual, expected)

	case OperatorContains:
		return strings.Contains(toString(actual), toString(expected))

	case OperatorStartsWith:
		return strings.HasPrefix(toString(actual), toString(expected))

	case OperatorEndsWith:
		return strings.HasSuffix(toString(actual), toString(expected))

	case OperatorRegex:
		re, err := regexp.Compile(toString(expected))
		if err != nil {
			return false
		}
		return re.MatchString(toString(actual))

	case OperatorGreaterThan:
		a, aok := toNumber(actual)
		b, bok := toNumber(expected)
		return aok && bok && a > b

	case OperatorLessThan:
		a, aok := toNumber(actual)
		b, bok := toNumber(expected)
		return aok && bok && a < b

	case OperatorIn:
		members, ok := asSlice(expected)
		if !ok {
			return false
		}
		return containsValue(members, actual)

	case OperatorNotIn:
		members, ok := asSlice(expected)
		if !ok {
			return false
		}
		return !containsValue(members, actual)

	default:
		return false
	}
}

// toDocument renders a value as a generic JSON document for path lookups.
// Returns nil when the value cannot be represented.
func toDocument(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc
}

// lookupPath walks a dotted path ("classification.sentiment.label") through
// nested JSON objects. Any missing segment yields nil.
func lookupPath(doc map[string]any, path string) any {
	if doc == nil || path == "" {
		return nil
	}
	var cur any = doc
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// strictEqual compares without cross-type coercion: numbers only equal
// numbers, strings only strings. The only normalization is across Go's
// numeric kinds, since JSON decoding and native construction disagree there.
func strictEqual(a, b any) bool {
	if an, ok := toNumberStrict(a); ok {
		bn, ok := toNumberStrict(b)
		return ok && an == bn
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return reflect.DeepEqual(a, b)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

// toNumber coerces numeric types and numeric strings.
func toNumber(v any) (float64, bool) {
	if n, ok := toNumberStrict(v); ok {
		return n, true
	}
	if s, ok := v.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

// toNumberStrict accepts only genuinely numeric values.
func toNumberStrict(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		n, err := t.Float64()
		return n, err == nil
	default:
		return 0, false
	}
}

// asSlice accepts any slice/array value; everything else is not a membership
// set and the in/not_in operators must evaluate to false.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func containsValue(members []any, v any) bool {
	for _, m := range members {
		if strictEqual(v, m) {
			return true
		}
	}
	return false
}
