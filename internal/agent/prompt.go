package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hearthd/hearth/internal/tools"
)

// BuildPrompt renders the full prompt for one command: the system
// instructions, the tool catalog, and the user's text. The tool
// section is generated from the dispatcher's own descriptors so the
// model is never offered an operation we cannot execute.
func BuildPrompt(command string) string {
	var b strings.Builder

	b.WriteString(`You are a home automation assistant. You control sensors, devices, and automation rules.

You must respond with exactly one JSON object of the form {"tool": "<name>", "args": {...}} and nothing else. Do not explain, do not add prose, do not wrap the JSON in markdown.

Available tools:

`)

	for _, d := range tools.Catalog() {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
		if params, err := json.Marshal(d.Parameters); err == nil {
			fmt.Fprintf(&b, "  parameters: %s\n", params)
		}
	}

	b.WriteString(`
Routing guidance:
- "what is" / "current" / "latest" questions about a sensor use get_latest_sensor_data.
- Questions naming an exact time use get_sensor_data_by_timestamp.
- "average" questions over a range use avg_sensor_data.
- Direct commands to turn something on or off use set_device_state.
- "if ... then ..." or "whenever ..." phrasing defines a rule: use add_automation_rule with the rule text and a structured condition.
- "check the rules" or "run the rules" uses check_rules; pass time_period only if the user names a time of day (morning, afternoon, evening, night).

`)

	b.WriteString("User command: ")
	b.WriteString(command)
	return b.String()
}
