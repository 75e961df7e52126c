// Package tools defines the fixed set of operations a resolved command
// can invoke, and the dispatcher that routes calls to the stores.
package tools

// Op identifies one of the eight operations. The set is closed: new
// operations require a new constant, a descriptor, and a dispatcher
// case, so an unhandled op is a compile-time visible gap rather than a
// silent runtime branch.
type Op uint8

const (
	OpGetLatestSensorData Op = iota
	OpGetSensorDataByTimestamp
	OpAvgSensorData
	OpSetDeviceState
	OpAddAutomationRule
	OpListAutomationRules
	OpCheckRules
	OpGetLatestSensorDataTimeFiltered
)

// opNames maps each Op to its wire-level tool name, in op order.
var opNames = [...]string{
	OpGetLatestSensorData:             "get_latest_sensor_data",
	OpGetSensorDataByTimestamp:        "get_sensor_data_by_timestamp",
	OpAvgSensorData:                   "avg_sensor_data",
	OpSetDeviceState:                  "set_device_state",
	OpAddAutomationRule:               "add_automation_rule",
	OpListAutomationRules:             "list_automation_rules",
	OpCheckRules:                      "check_rules",
	OpGetLatestSensorDataTimeFiltered: "get_latest_sensor_data_time_filtered",
}

// String returns the wire-level tool name.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "unknown"
}

// ParseOp maps an untrusted tool name to its Op. This is the boundary
// check against model output; names outside the allow-list report
// false.
func ParseOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return Op(op), true
		}
	}
	return 0, false
}

// Names returns all tool names in op order.
func Names() []string {
	names := make([]string, len(opNames))
	copy(names, opNames[:])
	return names
}
