package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hearthd/hearth/internal/extract"
	"github.com/hearthd/hearth/internal/llm"
	"github.com/hearthd/hearth/internal/tools"
)

// Agent resolves one free-text command at a time. It holds no
// per-command state; the stores behind the dispatcher carry all of it.
type Agent struct {
	llm        llm.Client
	dispatcher *tools.Dispatcher
	logger     *slog.Logger
}

// New creates an agent. A nil logger falls back to slog.Default().
func New(client llm.Client, dispatcher *tools.Dispatcher, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		llm:        client,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleCommand runs the full pipeline for one command: prompt the
// model, recover a tool call from its reply, check the name against
// the allow-list, normalize the argument keys, and dispatch. Every
// failure mode comes back as a result object; the raw model text is
// attached when the reply could not be used, so the caller can show
// the user what the model actually said.
func (a *Agent) HandleCommand(ctx context.Context, command string) map[string]any {
	a.logger.Debug("handling command", "command", command)

	reply, err := a.llm.Complete(ctx, BuildPrompt(command))
	if err != nil {
		a.logger.Error("llm request failed", "error", err)
		return map[string]any{"error": fmt.Sprintf("llm request failed: %v", err)}
	}

	call, err := extract.FromText(reply)
	if err != nil {
		a.logger.Warn("no tool call in model reply", "error", err)
		return map[string]any{
			"error": "model reply did not contain a tool call",
			"raw":   reply,
		}
	}

	if _, ok := tools.ParseOp(call.Tool); !ok {
		a.logger.Warn("model requested unknown tool", "tool", call.Tool)
		return map[string]any{
			"error": fmt.Sprintf("unknown tool %q", call.Tool),
			"raw":   reply,
		}
	}

	args := NormalizeArgs(call.Args)
	a.logger.Info("resolved command", "tool", call.Tool, "args", args)

	return a.dispatcher.Dispatch(ctx, call.Tool, args)
}
