package rules

import (
	"errors"
	"testing"
)

func TestParseNil(t *testing.T) {
	if _, err := Parse(nil); !errors.Is(err, ErrNilRule) {
		t.Errorf("Parse(nil) error = %v, want ErrNilRule", err)
	}
}

func TestParseSimple(t *testing.T) {
	s, err := Parse(map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25.0,
		"device":          "fan",
		"state":           "on",
		"room":            "kitchen",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Kind != KindSimple {
		t.Fatalf("Kind = %v, want simple", s.Kind)
	}
	if s.Simple.Room != "kitchen" || s.Simple.Threshold != 25.0 || s.Simple.Device != "fan" {
		t.Errorf("Simple = %+v", s.Simple)
	}
}

func TestParseSensorNameList(t *testing.T) {
	// A list-typed sensor_name is rejected regardless of the other
	// fields being valid.
	_, err := Parse(map[string]any{
		"sensor_name":     []any{"temperature", "humidity"},
		"threshold_value": 25.0,
		"device":          "fan",
		"state":           "on",
	})
	if !errors.Is(err, ErrSensorList) {
		t.Errorf("Parse() error = %v, want ErrSensorList", err)
	}
}

func TestParseConditionalSensorNameList(t *testing.T) {
	_, err := Parse(map[string]any{
		"condition": map[string]any{
			"sensor": map[string]any{
				"room":        "kitchen",
				"sensor_name": []any{"temperature"},
			},
			"value": 25.0,
		},
	})
	if !errors.Is(err, ErrSensorList) {
		t.Errorf("Parse() error = %v, want ErrSensorList", err)
	}
}

func TestParseSimpleMissingDevice(t *testing.T) {
	_, err := Parse(map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25.0,
		"state":           "on",
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("Parse() error = %v, want ErrMissingFields", err)
	}
}

func TestParseActionAlias(t *testing.T) {
	s, err := Parse(map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25,
		"device":          "fan",
		"action":          "off",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Simple.State != "off" {
		t.Errorf("State = %q, want %q taken from action alias", s.Simple.State, "off")
	}
	if _, ok := s.Fields["action"]; ok {
		t.Error("alias key should be removed from normalized fields")
	}
}

func TestParseActionDoesNotOverrideState(t *testing.T) {
	s, err := Parse(map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25,
		"device":          "fan",
		"state":           "on",
		"action":          "off",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Simple.State != "on" {
		t.Errorf("State = %q, want explicit state to win over alias", s.Simple.State)
	}
}

func TestParseConditional(t *testing.T) {
	s, err := Parse(map[string]any{
		"condition": map[string]any{
			"sensor": map[string]any{
				"room":        "kitchen",
				"sensor_name": "temperature",
			},
			"comparison_operator": ">=",
			"value":               25.0,
		},
		"actions": []any{
			map[string]any{"device": "fan", "state": "on"},
			map[string]any{"device": "light", "state": "off"},
		},
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Kind != KindConditional {
		t.Fatalf("Kind = %v, want conditional", s.Kind)
	}
	c := s.Conditional
	if c.Condition.Room != "kitchen" || c.Condition.Operator != ">=" || c.Condition.Value != 25.0 {
		t.Errorf("Condition = %+v", c.Condition)
	}
	if len(c.Actions) != 2 || c.Actions[0].Device != "fan" {
		t.Errorf("Actions = %+v", c.Actions)
	}
}

func TestParseConditionalDefaults(t *testing.T) {
	s, err := Parse(map[string]any{
		"condition": map[string]any{
			"sensor": map[string]any{"sensor_name": "humidity"},
			"value":  60,
		},
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Conditional.Condition.Operator != ">" {
		t.Errorf("Operator = %q, want default \">\"", s.Conditional.Condition.Operator)
	}
	if s.Conditional.Condition.Room != "" {
		t.Errorf("Room = %q, want empty (resolved at evaluation)", s.Conditional.Condition.Room)
	}
	if len(s.Conditional.Actions) != 0 {
		t.Errorf("Actions = %+v, want none", s.Conditional.Actions)
	}
}

func TestParseConditionalBadOperator(t *testing.T) {
	_, err := Parse(map[string]any{
		"condition": map[string]any{
			"sensor":              map[string]any{"sensor_name": "temperature"},
			"comparison_operator": "between",
			"value":               25.0,
		},
	})
	if err == nil {
		t.Error("Parse() should reject an unsupported operator")
	}
}

func TestParseLegacy(t *testing.T) {
	s, err := Parse(map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 20.0,
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if s.Kind != KindLegacy {
		t.Fatalf("Kind = %v, want legacy", s.Kind)
	}
	if s.Legacy.SensorName != "temperature" || s.Legacy.Threshold != 20.0 {
		t.Errorf("Legacy = %+v", s.Legacy)
	}
}

func TestParseDoesNotMutateInput(t *testing.T) {
	raw := map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25,
		"device":          "fan",
		"action":          "on",
	}
	if _, err := Parse(raw); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if _, ok := raw["state"]; ok {
		t.Error("Parse() must not modify the caller's map")
	}
	if _, ok := raw["action"]; !ok {
		t.Error("Parse() must not modify the caller's map")
	}
}
