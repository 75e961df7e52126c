// Package llm provides the text-completion client used for command
// resolution. The model is an opaque oracle: it receives a prompt and
// returns text, and nothing structured is enforced at this boundary —
// recovering a tool call from the text is the extractor's job.
package llm

import "context"

// Client is the interface command resolution depends on.
type Client interface {
	// Complete sends a prompt and returns the model's raw text output.
	Complete(ctx context.Context, prompt string) (string, error)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}
