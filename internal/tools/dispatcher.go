package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hearthd/hearth/internal/devices"
	"github.com/hearthd/hearth/internal/rules"
	"github.com/hearthd/hearth/internal/sensors"
)

// Dispatcher routes a normalized tool call to the corresponding store
// operation. Every operation returns a result object; failures are
// {"error": ...} (or {"status": "error", ...}) values, never panics or
// errors crossing this surface — one bad call must not end the session.
type Dispatcher struct {
	sensors *sensors.Store
	devices *devices.Table
	rules   *rules.Store
	engine  *rules.Engine
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher over the given stores. A nil
// logger falls back to slog.Default().
func NewDispatcher(s *sensors.Store, d *devices.Table, r *rules.Store, e *rules.Engine, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sensors: s,
		devices: d,
		rules:   r,
		engine:  e,
		logger:  logger,
	}
}

// Dispatch resolves an untrusted tool name and executes it. The name
// should already have passed the allow-list, but model output is
// re-checked here anyway.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	op, ok := ParseOp(name)
	if !ok {
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", name)}
	}
	return d.Call(ctx, op, args)
}

// Call executes a single operation.
func (d *Dispatcher) Call(ctx context.Context, op Op, args map[string]any) map[string]any {
	d.logger.Debug("dispatching tool call", "tool", op.String(), "args", args)

	switch op {
	case OpGetLatestSensorData:
		return d.getLatest(args)
	case OpGetSensorDataByTimestamp:
		return d.getByTimestamp(args)
	case OpAvgSensorData:
		return d.average(args)
	case OpSetDeviceState:
		return d.setDeviceState(ctx, args)
	case OpAddAutomationRule:
		return d.addRule(args)
	case OpListAutomationRules:
		return d.listRules()
	case OpCheckRules:
		return d.checkRules(ctx, args)
	case OpGetLatestSensorDataTimeFiltered:
		return d.getLatestTimeFiltered(args)
	default:
		return map[string]any{"error": fmt.Sprintf("unknown tool %q", op.String())}
	}
}

// --- Sensor queries ---

func (d *Dispatcher) getLatest(args map[string]any) map[string]any {
	room, _ := args["room"].(string)
	sensorName, _ := args["sensor_name"].(string)

	r, err := d.sensors.Latest(room, sensorName)
	if err != nil {
		return errResult(err)
	}
	return readingResult(r)
}

func (d *Dispatcher) getByTimestamp(args map[string]any) map[string]any {
	room, _ := args["room"].(string)
	sensorName, _ := args["sensor_name"].(string)
	tsRaw, _ := args["timestamp"].(string)

	ts, err := sensors.ParseTimestamp(tsRaw)
	if err != nil {
		return errResult(err)
	}

	r, err := d.sensors.At(room, sensorName, ts)
	if err != nil {
		return errResult(err)
	}
	return readingResult(r)
}

func (d *Dispatcher) average(args map[string]any) map[string]any {
	room, _ := args["room"].(string)
	sensorName, _ := args["sensor_name"].(string)
	startRaw, _ := args["start_time"].(string)
	endRaw, _ := args["end_time"].(string)

	start, err := sensors.ParseTimestamp(startRaw)
	if err != nil {
		return errResult(err)
	}
	end, err := sensors.ParseTimestamp(endRaw)
	if err != nil {
		return errResult(err)
	}

	avg, err := d.sensors.Average(room, sensorName, start, end)
	if err != nil {
		return errResult(err)
	}

	return map[string]any{
		"room":          room,
		"sensor_name":   sensorName,
		"start":         startRaw,
		"end":           endRaw,
		"average_value": avg,
	}
}

func (d *Dispatcher) getLatestTimeFiltered(args map[string]any) map[string]any {
	room, _ := args["room"].(string)
	sensorName, _ := args["sensor_name"].(string)
	periodRaw, _ := args["time_period"].(string)

	period, err := sensors.ParsePeriod(periodRaw)
	if err != nil {
		return errResult(fmt.Errorf("%w: %q", err, periodRaw))
	}

	r, err := d.sensors.LatestInPeriod(room, sensorName, period)
	if err != nil {
		return errResult(err)
	}

	result := readingResult(r)
	result["time_period"] = periodRaw
	return result
}

// --- Device actuation ---

func (d *Dispatcher) setDeviceState(ctx context.Context, args map[string]any) map[string]any {
	room, _ := args["room"].(string)
	device, _ := args["device"].(string)
	state, _ := args["state"].(string)

	if room == "" || device == "" || state == "" {
		return errResult(errors.New("room, device, and state are required"))
	}

	action, err := d.devices.Set(ctx, room, device, state)
	if err != nil {
		return errResult(err)
	}

	return map[string]any{
		"status": "success",
		"action": map[string]any{
			"timestamp": action.Timestamp.Format(time.RFC3339),
			"room":      action.Room,
			"device":    action.Device,
			"state":     action.State,
		},
	}
}

// --- Rules ---

func (d *Dispatcher) addRule(args map[string]any) map[string]any {
	ruleText, _ := args["rule_text"].(string)
	structured, _ := args["structured_rule"].(map[string]any)

	rule, err := d.rules.Add(ruleText, structured)
	if err != nil {
		return map[string]any{"status": "error", "message": err.Error()}
	}

	return map[string]any{
		"status":      "success",
		"rule_stored": ruleResult(rule),
	}
}

func (d *Dispatcher) listRules() map[string]any {
	all := d.rules.All()

	list := make([]map[string]any, 0, len(all))
	for _, rule := range all {
		list = append(list, ruleResult(rule))
	}

	return map[string]any{
		"rule_count": len(all),
		"rules":      list,
	}
}

func (d *Dispatcher) checkRules(ctx context.Context, args map[string]any) map[string]any {
	timePeriod, _ := args["time_period"].(string)
	return d.engine.Check(ctx, timePeriod)
}

// --- Result shaping ---

func readingResult(r sensors.Reading) map[string]any {
	return map[string]any{
		"timestamp":   r.Timestamp.Format(time.RFC3339),
		"room":        r.Room,
		"sensor_name": r.SensorName,
		"value":       r.Value,
	}
}

func ruleResult(r rules.Rule) map[string]any {
	return map[string]any{
		"id":         r.ID,
		"rule_text":  r.Text,
		"structured": r.Structured.Fields,
		"created_at": r.CreatedAt.Format(time.RFC3339),
	}
}

func errResult(err error) map[string]any {
	return map[string]any{"error": err.Error()}
}
