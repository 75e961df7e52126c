package extract

import (
	"errors"
	"testing"
)

func TestSingleObject(t *testing.T) {
	call, err := FromText(`{"tool": "check_rules", "args": {"time_period": "evening"}}`)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Tool != "check_rules" {
		t.Errorf("Tool = %q", call.Tool)
	}
	if call.Args["time_period"] != "evening" {
		t.Errorf("Args = %v", call.Args)
	}
}

func TestObjectBuriedInProse(t *testing.T) {
	text := "Sure! To check the temperature I will call a tool.\n" +
		"```json\n" +
		`{"tool": "get_latest_sensor_data", "args": {"room": "kitchen", "sensor_name": "temperature"}}` +
		"\n```\nLet me know if you need anything else."

	call, err := FromText(text)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Tool != "get_latest_sensor_data" {
		t.Errorf("Tool = %q", call.Tool)
	}
}

func TestLastObjectWins(t *testing.T) {
	text := `{"tool": "list_automation_rules", "args": {}} some revision... ` +
		`{"tool": "check_rules", "args": {}}`

	call, err := FromText(text)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Tool != "check_rules" {
		t.Errorf("Tool = %q, want the last object", call.Tool)
	}
}

func TestFallbackToEarlierToolObject(t *testing.T) {
	// The structurally-last object has no "tool" key; extraction must
	// fall back to the last-discovered object that does.
	text := `{"tool": "set_device_state", "args": {"room": "kitchen", "device": "fan", "state": "on"}}` +
		` and here is a summary: {"note": "done"}`

	call, err := FromText(text)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Tool != "set_device_state" {
		t.Errorf("Tool = %q, want fallback to earlier object", call.Tool)
	}
}

func TestFallbackPrefersLatest(t *testing.T) {
	text := `{"tool": "first", "args": {}} {"tool": "second", "args": {}} {"summary": true}`

	call, err := FromText(text)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Tool != "second" {
		t.Errorf("Tool = %q, want reverse-order fallback to pick the later candidate", call.Tool)
	}
}

func TestTrailingMalformedObjectIgnored(t *testing.T) {
	text := `{"tool": "check_rules", "args": {}} {"tool": "broken",`

	call, err := FromText(text)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Tool != "check_rules" {
		t.Errorf("Tool = %q", call.Tool)
	}
}

func TestNestedBraces(t *testing.T) {
	text := `{"tool": "add_automation_rule", "args": {"rule_text": "fan when hot", ` +
		`"structured_rule": {"sensor_name": "temperature", "threshold_value": 25, ` +
		`"device": "fan", "state": "on"}}}`

	call, err := FromText(text)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	structured, ok := call.Args["structured_rule"].(map[string]any)
	if !ok {
		t.Fatalf("structured_rule missing: %v", call.Args)
	}
	if structured["device"] != "fan" {
		t.Errorf("structured_rule = %v", structured)
	}
}

func TestNoObjects(t *testing.T) {
	_, err := FromText("I cannot help with that.")
	if !errors.Is(err, ErrNoToolCall) {
		t.Errorf("FromText() error = %v, want ErrNoToolCall", err)
	}
}

func TestNoToolKeyAnywhere(t *testing.T) {
	_, err := FromText(`{"a": 1} {"b": 2}`)
	if !errors.Is(err, ErrNoToolCall) {
		t.Errorf("FromText() error = %v, want ErrNoToolCall", err)
	}
}

func TestNothingParses(t *testing.T) {
	_, err := FromText(`{not json} {also not}`)
	if !errors.Is(err, ErrNoToolCall) {
		t.Errorf("FromText() error = %v, want ErrNoToolCall", err)
	}
}

func TestMissingArgs(t *testing.T) {
	call, err := FromText(`{"tool": "list_automation_rules"}`)
	if err != nil {
		t.Fatalf("FromText() error: %v", err)
	}
	if call.Args == nil {
		t.Error("Args must never be nil")
	}
	if len(call.Args) != 0 {
		t.Errorf("Args = %v, want empty", call.Args)
	}
}
