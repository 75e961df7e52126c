// Package rules stores automation rules and evaluates them against
// live sensor readings. Stored rules arrive in one of three accepted
// shapes; parsing classifies each into an explicit variant at ingestion
// so the evaluation switch is exhaustive rather than a chain of ad-hoc
// key probes.
package rules

import (
	"errors"
	"fmt"
)

// Validation failures surfaced by Parse. The dispatch layer turns these
// into {"status": "error", "message": ...} results.
var (
	// ErrNilRule means no structured rule payload was supplied.
	ErrNilRule = errors.New("structured rule cannot be null")

	// ErrSensorList means sensor_name was a collection. Rules target a
	// single sensor; multi-sensor requests must be split into separate
	// rules before they reach the store.
	ErrSensorList = errors.New("sensor_name must be a single sensor name, not a list")

	// ErrMissingFields means a simple-shape rule lacked one of its four
	// required fields.
	ErrMissingFields = errors.New("missing required fields: sensor_name, threshold_value, device, state")
)

// Kind identifies which rule shape a structured rule was parsed as.
type Kind int

const (
	// KindSimple is the flat four-field shape:
	// {sensor_name, threshold_value, device, state, room?}.
	KindSimple Kind = iota

	// KindConditional is the nested shape:
	// {condition: {sensor, comparison_operator, value}, actions: [...]}.
	KindConditional

	// KindLegacy is the bare {sensor_name, threshold_value} shape kept
	// for rules stored before device/state fields existed.
	KindLegacy
)

// String returns the kind name for logs and trigger notes.
func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindConditional:
		return "conditional"
	case KindLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SimpleRule is the flat shape. Room is empty when the rule did not
// name one; evaluation substitutes the default room.
type SimpleRule struct {
	Room       string
	SensorName string
	Threshold  float64
	Device     string
	State      string
}

// RuleCondition is the condition half of a conditional rule. Room is
// empty when the condition's sensor did not name one.
type RuleCondition struct {
	Room       string
	SensorName string
	Operator   string
	Value      float64
}

// RuleAction is one entry of a conditional rule's action list. Empty
// fields fall back to the default device/state at evaluation time.
type RuleAction struct {
	Device string
	State  string
}

// ConditionalRule is the nested condition/actions shape. Only the first
// action is ever executed.
type ConditionalRule struct {
	Condition RuleCondition
	Actions   []RuleAction
}

// LegacyRule carries no device or state; evaluation always actuates the
// default device in the default room.
type LegacyRule struct {
	SensorName string
	Threshold  float64
}

// Structured is the tagged union of the three accepted rule shapes.
// Exactly one of the variant pointers is non-nil, matching Kind.
// Fields holds the normalized (post-alias) payload for listing and
// persistence.
type Structured struct {
	Kind        Kind
	Simple      *SimpleRule
	Conditional *ConditionalRule
	Legacy      *LegacyRule
	Fields      map[string]any
}

// operators accepted in a conditional rule. The symbolic and word forms
// are interchangeable on the wire; less-than conditions are stored but
// never trigger (see Engine).
var operators = map[string]bool{
	">": true, ">=": true, "<": true, "<=": true,
	"gt": true, "ge": true,
}

// Parse validates a raw structured-rule payload and classifies it into
// one of the three variants. The input map is not modified; the
// returned Structured carries its own normalized copy.
func Parse(raw map[string]any) (Structured, error) {
	if raw == nil {
		return Structured{}, ErrNilRule
	}

	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		fields[k] = v
	}

	if isList(fields["sensor_name"]) {
		return Structured{}, ErrSensorList
	}

	// "action" is accepted as a synonym for "state", but never
	// overrides an explicitly supplied state.
	if _, hasState := fields["state"]; !hasState {
		if v, ok := fields["action"]; ok {
			fields["state"] = v
			delete(fields, "action")
		}
	}

	if cond, ok := fields["condition"].(map[string]any); ok {
		if sensor, ok := cond["sensor"].(map[string]any); ok {
			return parseConditional(fields, cond, sensor)
		}
	}

	_, hasDevice := fields["device"]
	_, hasState := fields["state"]
	_, hasSensor := fields["sensor_name"]
	_, hasThreshold := fields["threshold_value"]

	if hasSensor && hasThreshold && !hasDevice && !hasState {
		return parseLegacy(fields)
	}
	return parseSimple(fields)
}

func parseSimple(fields map[string]any) (Structured, error) {
	sensorName, okSensor := fields["sensor_name"].(string)
	threshold, okThreshold := toFloat(fields["threshold_value"])
	device, okDevice := fields["device"].(string)
	state, okState := fields["state"].(string)

	if !okSensor || !okThreshold || !okDevice || !okState {
		return Structured{}, ErrMissingFields
	}

	room, _ := fields["room"].(string)

	return Structured{
		Kind: KindSimple,
		Simple: &SimpleRule{
			Room:       room,
			SensorName: sensorName,
			Threshold:  threshold,
			Device:     device,
			State:      state,
		},
		Fields: fields,
	}, nil
}

func parseConditional(fields, cond, sensor map[string]any) (Structured, error) {
	if isList(sensor["sensor_name"]) {
		return Structured{}, ErrSensorList
	}
	sensorName, ok := sensor["sensor_name"].(string)
	if !ok {
		return Structured{}, fmt.Errorf("condition.sensor.sensor_name must be a string")
	}

	value, ok := toFloat(cond["value"])
	if !ok {
		return Structured{}, fmt.Errorf("condition.value must be a number")
	}

	operator := ">"
	if v, ok := cond["comparison_operator"].(string); ok {
		operator = v
	} else if v, ok := cond["operator"].(string); ok {
		operator = v
	}
	if !operators[operator] {
		return Structured{}, fmt.Errorf("unsupported comparison operator %q", operator)
	}

	room, _ := sensor["room"].(string)

	var actions []RuleAction
	if list, ok := fields["actions"].([]any); ok {
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			device, _ := m["device"].(string)
			state, _ := m["state"].(string)
			actions = append(actions, RuleAction{Device: device, State: state})
		}
	}

	return Structured{
		Kind: KindConditional,
		Conditional: &ConditionalRule{
			Condition: RuleCondition{
				Room:       room,
				SensorName: sensorName,
				Operator:   operator,
				Value:      value,
			},
			Actions: actions,
		},
		Fields: fields,
	}, nil
}

func parseLegacy(fields map[string]any) (Structured, error) {
	sensorName, ok := fields["sensor_name"].(string)
	if !ok {
		return Structured{}, fmt.Errorf("sensor_name must be a string")
	}
	threshold, ok := toFloat(fields["threshold_value"])
	if !ok {
		return Structured{}, fmt.Errorf("threshold_value must be a number")
	}

	return Structured{
		Kind: KindLegacy,
		Legacy: &LegacyRule{
			SensorName: sensorName,
			Threshold:  threshold,
		},
		Fields: fields,
	}, nil
}

// isList reports whether a decoded JSON value is an array.
func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

// toFloat converts the numeric types JSON decoding and Go literals
// produce into a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
