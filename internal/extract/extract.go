// Package extract recovers a structured tool call from raw model
// output. Models are told to answer with a single JSON object, but in
// practice the answer arrives wrapped in prose, markdown fences, or
// several candidate objects; this package digs the actual call out of
// that noise.
package extract

import (
	"encoding/json"
	"errors"
)

// ErrNoToolCall means the text contained no parsable JSON object with a
// "tool" key. Callers treat this as "no actionable call", never as a
// fatal condition.
var ErrNoToolCall = errors.New("no tool call found in model output")

// ToolCall is the transient {tool, args} request recovered from model
// output. Args is never nil.
type ToolCall struct {
	Tool string
	Args map[string]any
}

// FromText scans raw model output and returns the most plausible tool
// call.
//
// Every maximal balanced {...} span at brace depth zero is a candidate.
// Candidates are parsed in discovery order and the last one that parses
// is selected — models tend to emit reasoning first and the real answer
// last. If that object lacks a "tool" key, the remaining parsed
// candidates are tried in reverse discovery order and the first one
// carrying a "tool" key wins. Brace counting is byte-level and does not
// track string literals; braces inside JSON strings will split a
// candidate, which in practice only discards it and falls back to an
// earlier one.
func FromText(text string) (*ToolCall, error) {
	var parsed []map[string]any

	depth := 0
	start := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(text[start:i+1]), &obj); err == nil {
					parsed = append(parsed, obj)
				}
				start = -1
			}
		}
	}

	if len(parsed) == 0 {
		return nil, ErrNoToolCall
	}

	last := parsed[len(parsed)-1]
	if _, ok := last["tool"]; ok {
		return newToolCall(last), nil
	}

	for i := len(parsed) - 2; i >= 0; i-- {
		if _, ok := parsed[i]["tool"]; ok {
			return newToolCall(parsed[i]), nil
		}
	}

	return nil, ErrNoToolCall
}

func newToolCall(obj map[string]any) *ToolCall {
	tool, _ := obj["tool"].(string)
	args, _ := obj["args"].(map[string]any)
	if args == nil {
		args = map[string]any{}
	}
	return &ToolCall{Tool: tool, Args: args}
}
