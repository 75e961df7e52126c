package tools

// Descriptor documents one operation for the model: its name, what it
// does, and its argument schema. The system prompt's tool section is
// rendered from these, so the prompt can never drift from what the
// dispatcher actually accepts.
type Descriptor struct {
	Op          Op
	Name        string
	Description string
	Parameters  map[string]any
}

// Catalog returns descriptors for all operations, in op order.
func Catalog() []Descriptor {
	return []Descriptor{
		{
			Op:          OpGetLatestSensorData,
			Name:        OpGetLatestSensorData.String(),
			Description: "Get the most recent reading for a sensor in a room. Use for \"what is\", \"latest\", \"current\" questions.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"room":        map[string]any{"type": "string", "description": "Room name, e.g. living_room, kitchen"},
					"sensor_name": map[string]any{"type": "string", "description": "Sensor name, e.g. temperature, humidity"},
				},
				"required": []string{"room", "sensor_name"},
			},
		},
		{
			Op:          OpGetSensorDataByTimestamp,
			Name:        OpGetSensorDataByTimestamp.String(),
			Description: "Get the reading recorded at an exact timestamp.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"room":        map[string]any{"type": "string"},
					"sensor_name": map[string]any{"type": "string"},
					"timestamp":   map[string]any{"type": "string", "description": "e.g. 2026-03-01 13:30:00"},
				},
				"required": []string{"room", "sensor_name", "timestamp"},
			},
		},
		{
			Op:          OpAvgSensorData,
			Name:        OpAvgSensorData.String(),
			Description: "Average a sensor's readings over a time interval. Use for \"average\" questions.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"room":        map[string]any{"type": "string"},
					"sensor_name": map[string]any{"type": "string"},
					"start_time":  map[string]any{"type": "string"},
					"end_time":    map[string]any{"type": "string"},
				},
				"required": []string{"room", "sensor_name", "start_time", "end_time"},
			},
		},
		{
			Op:          OpSetDeviceState,
			Name:        OpSetDeviceState.String(),
			Description: "Set a device's state in a room. Use for \"turn on/off\", \"set\" commands.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"room":   map[string]any{"type": "string"},
					"device": map[string]any{"type": "string", "description": "Device name, e.g. fan, light"},
					"state":  map[string]any{"type": "string", "description": "Target state, e.g. on, off"},
				},
				"required": []string{"room", "device", "state"},
			},
		},
		{
			Op:          OpAddAutomationRule,
			Name:        OpAddAutomationRule.String(),
			Description: "Store an automation rule. Use for \"if\", \"when\", \"whenever\" commands with one condition and an action. Takes ONLY rule_text and structured_rule.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"rule_text": map[string]any{"type": "string", "description": "The user's rule wording, verbatim"},
					"structured_rule": map[string]any{
						"type":        "object",
						"description": "{sensor_name (single string, never a list), threshold_value (number), device, state, room?}",
					},
				},
				"required": []string{"rule_text", "structured_rule"},
			},
		},
		{
			Op:          OpListAutomationRules,
			Name:        OpListAutomationRules.String(),
			Description: "List all stored automation rules. Use for \"list rules\", \"show rules\".",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Op:          OpCheckRules,
			Name:        OpCheckRules.String(),
			Description: "Evaluate all stored rules against current readings and actuate satisfied ones. Use for \"check rules\", \"run rules\".",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"time_period": map[string]any{"type": "string", "description": "Optional: morning, afternoon, evening, night"},
				},
			},
		},
		{
			Op:          OpGetLatestSensorDataTimeFiltered,
			Name:        OpGetLatestSensorDataTimeFiltered.String(),
			Description: "Get the most recent reading within a named time of day. Use when the user names a period (morning, afternoon, evening, night).",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"room":        map[string]any{"type": "string"},
					"sensor_name": map[string]any{"type": "string"},
					"time_period": map[string]any{"type": "string", "description": "morning, afternoon, evening, night"},
				},
				"required": []string{"room", "sensor_name", "time_period"},
			},
		},
	}
}
