package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthd/hearth/internal/devices"
	"github.com/hearthd/hearth/internal/sensors"
)

// Defaults applied when a rule omits a room, device, or state.
const (
	DefaultRoom   = "living_room"
	DefaultDevice = "fan"
	DefaultState  = "on"
)

// SensorSource is the read side the engine evaluates conditions
// against.
type SensorSource interface {
	Latest(room, sensorName string) (sensors.Reading, error)
	LatestInPeriod(room, sensorName string, p sensors.Period) (sensors.Reading, error)
}

// Actuator receives device state changes for satisfied rules. A trigger
// is only reported when the actuator returns nil.
type Actuator interface {
	Set(ctx context.Context, room, device, state string) (devices.Action, error)
}

// Engine evaluates every stored rule against current readings. Rules
// are evaluated independently and in storage order; one rule's lookup
// failure never prevents evaluation of later rules, and no rule is
// evaluated twice in one pass.
//
// Evaluation is shape-based: conditional rules get operator evaluation
// (greater-than family only — a stored "<" or "<=" condition is listed
// but never fires, keeping the exceed-a-threshold alerting semantics),
// while simple and legacy rules share the legacy path: room is always
// the default room, the comparison is strictly greater-than, and the
// action is always the default device and state, regardless of any
// device or state fields the rule carries.
type Engine struct {
	sensors  SensorSource
	actuator Actuator
	store    *Store
	logger   *slog.Logger
}

// NewEngine creates a rule engine. A nil logger falls back to
// slog.Default().
func NewEngine(source SensorSource, actuator Actuator, store *Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sensors:  source,
		actuator: actuator,
		store:    store,
		logger:   logger,
	}
}

// Check evaluates all stored rules. timePeriod optionally restricts
// conditional-rule lookups to readings within a named time-of-day
// window; an unrecognized period simply yields no matching readings.
// The result is always a checked status with the ordered trigger notes,
// never an error.
func (e *Engine) Check(ctx context.Context, timePeriod string) map[string]any {
	var triggered []string

	for _, rule := range e.store.All() {
		var note string
		var ok bool

		switch rule.Structured.Kind {
		case KindConditional:
			note, ok = e.checkConditional(ctx, rule, timePeriod)
		case KindSimple, KindLegacy:
			note, ok = e.checkLegacy(ctx, rule)
		}

		if ok {
			triggered = append(triggered, note)
		}
	}

	periodLabel := timePeriod
	if periodLabel == "" {
		periodLabel = "all_day"
	}

	result := map[string]any{
		"status":      "checked",
		"total_rules": e.store.Count(),
		"time_period": periodLabel,
	}
	if len(triggered) == 0 {
		result["rules_triggered"] = "none"
	} else {
		result["rules_triggered"] = triggered
	}
	return result
}

// checkConditional evaluates a conditional-shape rule. Returns the
// trigger note and true when the rule fired.
func (e *Engine) checkConditional(ctx context.Context, rule Rule, timePeriod string) (string, bool) {
	cond := rule.Structured.Conditional.Condition

	room := cond.Room
	if room == "" {
		room = DefaultRoom
	}

	reading, err := e.lookup(room, cond.SensorName, timePeriod)
	if err != nil {
		e.logger.Debug("rule skipped, no reading",
			"rule", rule.ID, "room", room, "sensor", cond.SensorName, "error", err)
		return "", false
	}

	met := false
	switch cond.Operator {
	case ">", "gt":
		met = reading.Value > cond.Value
	case ">=", "ge":
		met = reading.Value >= cond.Value
	}
	// "<" and "<=" conditions are stored but never fire.
	if !met {
		return "", false
	}

	action := RuleAction{}
	if len(rule.Structured.Conditional.Actions) > 0 {
		action = rule.Structured.Conditional.Actions[0]
	}
	device := action.Device
	if device == "" {
		device = DefaultDevice
	}
	state := action.State
	if state == "" {
		state = DefaultState
	}

	return e.actuate(ctx, rule, room, device, state)
}

// checkLegacy evaluates a simple- or legacy-shape rule: default room,
// strict greater-than, default device and state.
func (e *Engine) checkLegacy(ctx context.Context, rule Rule) (string, bool) {
	var sensorName string
	var threshold float64

	switch rule.Structured.Kind {
	case KindSimple:
		sensorName = rule.Structured.Simple.SensorName
		threshold = rule.Structured.Simple.Threshold
	case KindLegacy:
		sensorName = rule.Structured.Legacy.SensorName
		threshold = rule.Structured.Legacy.Threshold
	}

	reading, err := e.sensors.Latest(DefaultRoom, sensorName)
	if err != nil {
		e.logger.Debug("rule skipped, no reading",
			"rule", rule.ID, "room", DefaultRoom, "sensor", sensorName, "error", err)
		return "", false
	}

	if reading.Value <= threshold {
		return "", false
	}

	return e.actuate(ctx, rule, DefaultRoom, DefaultDevice, DefaultState)
}

// lookup fetches the most recent reading, time-filtered when a period
// was supplied.
func (e *Engine) lookup(room, sensorName, timePeriod string) (sensors.Reading, error) {
	if timePeriod == "" {
		return e.sensors.Latest(room, sensorName)
	}
	period, err := sensors.ParsePeriod(timePeriod)
	if err != nil {
		return sensors.Reading{}, err
	}
	return e.sensors.LatestInPeriod(room, sensorName, period)
}

// actuate executes a satisfied rule's action and formats its trigger
// note. A failed actuation is logged and produces no note.
func (e *Engine) actuate(ctx context.Context, rule Rule, room, device, state string) (string, bool) {
	if _, err := e.actuator.Set(ctx, room, device, state); err != nil {
		e.logger.Warn("rule actuation failed",
			"rule", rule.ID, "room", room, "device", device, "error", err)
		return "", false
	}

	e.logger.Info("rule triggered",
		"rule", rule.ID, "kind", rule.Structured.Kind.String(),
		"room", room, "device", device, "state", state)

	return fmt.Sprintf("%s.%s → %s (rule: %s)", room, device, state, clip(rule.Text, 50)), true
}

// clip shortens long rule text for trigger notes.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
