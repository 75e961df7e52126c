package rules

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestAddAndList(t *testing.T) {
	s := NewStore(nil)

	rule, err := s.Add("turn on the fan when it gets hot", map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25.0,
		"device":          "fan",
		"state":           "on",
	})
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if rule.ID == "" {
		t.Error("Add() rule should have an ID")
	}
	if rule.CreatedAt.IsZero() {
		t.Error("Add() rule should have a creation time")
	}

	if s.Count() != 1 {
		t.Errorf("Count() = %d, want 1", s.Count())
	}
	all := s.All()
	if len(all) != 1 || all[0].Text != "turn on the fan when it gets hot" {
		t.Errorf("All() = %+v", all)
	}
}

func TestAddRejectsInvalid(t *testing.T) {
	s := NewStore(nil)

	if _, err := s.Add("bad", nil); !errors.Is(err, ErrNilRule) {
		t.Errorf("Add(nil) error = %v, want ErrNilRule", err)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d after rejected rule, want 0", s.Count())
	}
}

func TestAddPreservesOrder(t *testing.T) {
	s := NewStore(nil)

	for _, text := range []string{"first", "second", "third"} {
		if _, err := s.Add(text, map[string]any{
			"sensor_name":     "temperature",
			"threshold_value": 20.0,
		}); err != nil {
			t.Fatalf("Add(%q) error: %v", text, err)
		}
	}

	all := s.All()
	if all[0].Text != "first" || all[1].Text != "second" || all[2].Text != "third" {
		t.Errorf("All() out of order: %v, %v, %v", all[0].Text, all[1].Text, all[2].Text)
	}
}

func TestRuleLogRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	log, err := OpenRuleLog(dbPath)
	if err != nil {
		t.Fatalf("OpenRuleLog(): %v", err)
	}
	t.Cleanup(func() { log.Close() })

	s := NewStore(nil)
	s.SetLog(log)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	s.nowFunc = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}

	if _, err := s.Add("fan on over 25", map[string]any{
		"sensor_name":     "temperature",
		"threshold_value": 25.0,
		"device":          "fan",
		"state":           "on",
	}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if _, err := s.Add("humidity alert", map[string]any{
		"condition": map[string]any{
			"sensor": map[string]any{"room": "kitchen", "sensor_name": "humidity"},
			"value":  60.0,
		},
		"actions": []any{map[string]any{"device": "dehumidifier", "state": "on"}},
	}); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	restored := NewStore(nil)
	if err := restored.Restore(log); err != nil {
		t.Fatalf("Restore(): %v", err)
	}

	all := restored.All()
	if len(all) != 2 {
		t.Fatalf("restored %d rules, want 2", len(all))
	}
	if all[0].Text != "fan on over 25" || all[0].Structured.Kind != KindSimple {
		t.Errorf("first restored rule = %q kind %v", all[0].Text, all[0].Structured.Kind)
	}
	if all[1].Structured.Kind != KindConditional {
		t.Errorf("second restored rule kind = %v, want conditional", all[1].Structured.Kind)
	}
	if all[1].Structured.Conditional.Actions[0].Device != "dehumidifier" {
		t.Errorf("restored conditional actions = %+v", all[1].Structured.Conditional.Actions)
	}
}

func TestRuleLogSubSecondOrder(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "rules.db")

	log, err := OpenRuleLog(dbPath)
	if err != nil {
		t.Fatalf("OpenRuleLog(): %v", err)
	}
	t.Cleanup(func() { log.Close() })

	s := NewStore(nil)
	s.SetLog(log)

	// Whole-second timestamp first, then a later sub-second one. The
	// textual forms sort the other way around ("...:00.5Z" < "...:00Z"),
	// so this catches any regression to created_at string ordering.
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	stamps := []time.Time{base, base.Add(500 * time.Millisecond)}
	n := 0
	s.nowFunc = func() time.Time {
		ts := stamps[n]
		n++
		return ts
	}

	for _, text := range []string{"first", "second"} {
		if _, err := s.Add(text, map[string]any{
			"sensor_name":     "temperature",
			"threshold_value": 25.0,
			"device":          "fan",
			"state":           "on",
		}); err != nil {
			t.Fatalf("Add(%q) error: %v", text, err)
		}
	}

	restored := NewStore(nil)
	if err := restored.Restore(log); err != nil {
		t.Fatalf("Restore(): %v", err)
	}

	all := restored.All()
	if len(all) != 2 {
		t.Fatalf("restored %d rules, want 2", len(all))
	}
	if all[0].Text != "first" || all[1].Text != "second" {
		t.Errorf("restored order = [%q, %q], want creation order", all[0].Text, all[1].Text)
	}
}
