// Package agent turns free-text commands into tool calls: it prompts
// the model, recovers a call from whatever text comes back, cleans up
// the argument keys, and dispatches.
package agent

// argAliases maps the key variants models actually emit to the keys
// the dispatcher expects. Order matters: when several aliases of the
// same key are present, the later one wins.
var argAliases = []struct {
	alias     string
	canonical string
}{
	{"sensor_type", "sensor_name"},
	{"sensor", "sensor_name"},
	{"location", "room"},
}

// NormalizeArgs rewrites aliased argument keys in place and returns
// the same map. An explicitly supplied canonical key always wins over
// its aliases, which are dropped.
func NormalizeArgs(args map[string]any) map[string]any {
	if args == nil {
		return map[string]any{}
	}

	explicit := make(map[string]bool, len(argAliases))
	for _, a := range argAliases {
		if _, ok := args[a.canonical]; ok {
			explicit[a.canonical] = true
		}
	}

	for _, a := range argAliases {
		v, ok := args[a.alias]
		if !ok {
			continue
		}
		if !explicit[a.canonical] {
			args[a.canonical] = v
		}
		delete(args, a.alias)
	}
	return args
}
