// Hearth is a home automation agent that resolves natural-language
// commands into sensor queries, device actuations, and automation
// rules, using a local Ollama model for command resolution.
//
// Usage:
//
//	hearth chat              Start an interactive command session
//	hearth ask <command>     Resolve a single command and print the result
//	hearth check [period]    Evaluate automation rules once and print the result
//	hearth version           Print version and build information
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearthd/hearth/internal/agent"
	"github.com/hearthd/hearth/internal/buildinfo"
	"github.com/hearthd/hearth/internal/config"
	"github.com/hearthd/hearth/internal/devices"
	"github.com/hearthd/hearth/internal/llm"
	"github.com/hearthd/hearth/internal/mqtt"
	"github.com/hearthd/hearth/internal/rules"
	"github.com/hearthd/hearth/internal/sensors"
	"github.com/hearthd/hearth/internal/tools"

	_ "github.com/mattn/go-sqlite3" // SQLite driver for database/sql
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run]. This keeps
// os.Exit, os.Stdout, and os.Args out of the application logic so that
// the full lifecycle can be driven from tests.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point for the hearth command. Arguments are
// parsed by hand; the flag package relies on package-level globals,
// which makes it impossible to call run() concurrently from tests, and
// our argument surface is small.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	// Secrets and endpoint overrides may come from a .env file; a
	// missing file is fine.
	_ = godotenv.Load()

	var configPath string
	var command string
	var cmdArgs []string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			if command != "" {
				cmdArgs = append(cmdArgs, args[i])
			} else {
				return fmt.Errorf("unknown flag: %s", args[i])
			}
		}
	}

	switch command {
	case "chat":
		return runChat(ctx, stdin, stdout, configPath)
	case "ask":
		if len(cmdArgs) == 0 {
			return fmt.Errorf("usage: hearth ask <command>")
		}
		return runAsk(ctx, stdout, configPath, strings.Join(cmdArgs, " "))
	case "check":
		period := ""
		if len(cmdArgs) > 0 {
			period = cmdArgs[0]
		}
		return runCheck(ctx, stdout, configPath, period)
	case "version":
		return runVersion(stdout)
	case "":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "Hearth - Home Automation Agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: hearth [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  chat             Interactive command session (exit with 'exit' or Ctrl-D)")
	fmt.Fprintln(w, "  ask <command>    Resolve a single command and print the result")
	fmt.Fprintln(w, "  check [period]   Evaluate automation rules once (period: morning/afternoon/evening/night)")
	fmt.Fprintln(w, "  version          Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>   Path to config file (default: auto-discover)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./config.yaml, ~/.config/hearth/config.yaml, /etc/hearth/config.yaml")
	return nil
}

// runVersion prints build metadata.
func runVersion(w io.Writer) error {
	fmt.Fprintln(w, buildinfo.String())
	info := buildinfo.Info()
	for _, k := range []string{"version", "git_commit", "git_branch", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// system bundles everything a subcommand needs: the agent for command
// resolution, the engine for direct rule checks, and the teardown
// hooks accumulated during bootstrap.
type system struct {
	agent    *agent.Agent
	engine   *rules.Engine
	logger   *slog.Logger
	shutdown []func(context.Context) error
}

// close runs the accumulated teardown hooks in reverse order, with a
// short deadline detached from the (likely already cancelled) run
// context.
func (s *system) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.shutdown) - 1; i >= 0; i-- {
		if err := s.shutdown[i](ctx); err != nil {
			s.logger.Warn("shutdown step failed", "error", err)
		}
	}
}

// bootstrap loads the config and wires the full stack: sensor store
// from CSV, device table with its SQLite journal, rule store with its
// SQLite log, engine, dispatcher, Ollama client, and the optional MQTT
// announcer.
func bootstrap(ctx context.Context, stdout io.Writer, configPath string) (*system, error) {
	cfgPath, err := config.FindConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	level := slog.LevelInfo
	if cfg.LogLevel != "" {
		level, err = config.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}
	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
	slog.SetDefault(logger)
	logger.Info("config loaded", "path", cfgPath, "model", cfg.Ollama.Model)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	readings, err := sensors.LoadCSV(cfg.SensorCSV, logger)
	if err != nil {
		return nil, fmt.Errorf("load sensor data %s: %w", cfg.SensorCSV, err)
	}
	source := sensors.NewStore(logger)
	source.Load(readings)
	logger.Info("sensor data loaded", "path", cfg.SensorCSV, "readings", source.Len())

	sys := &system{logger: logger}

	journal, err := devices.OpenJournal(cfg.DataDir + "/devices.db")
	if err != nil {
		return nil, fmt.Errorf("open device journal: %w", err)
	}
	sys.shutdown = append(sys.shutdown, func(context.Context) error { return journal.Close() })

	table := devices.NewTable(logger)
	table.SetJournal(journal)
	if err := table.Seed(journal); err != nil {
		return nil, fmt.Errorf("restore device states: %w", err)
	}

	ruleLog, err := rules.OpenRuleLog(cfg.DataDir + "/rules.db")
	if err != nil {
		return nil, fmt.Errorf("open rule log: %w", err)
	}
	sys.shutdown = append(sys.shutdown, func(context.Context) error { return ruleLog.Close() })

	ruleStore := rules.NewStore(logger)
	ruleStore.SetLog(ruleLog)
	if err := ruleStore.Restore(ruleLog); err != nil {
		return nil, fmt.Errorf("restore automation rules: %w", err)
	}
	logger.Info("automation rules restored", "count", ruleStore.Count())

	if cfg.MQTT.Enabled {
		announcer := mqtt.New(cfg.MQTT, logger)
		if err := announcer.Start(ctx); err != nil {
			return nil, fmt.Errorf("start mqtt announcer: %w", err)
		}
		sys.shutdown = append(sys.shutdown, announcer.Stop)
		table.SetAnnouncer(announcer)
	}

	engine := rules.NewEngine(source, table, ruleStore, logger)
	dispatcher := tools.NewDispatcher(source, table, ruleStore, engine, logger)

	client := llm.NewOllamaClient(cfg.Ollama.URL, cfg.Ollama.Model, logger)
	if err := client.Ping(ctx); err != nil {
		logger.Warn("ollama not reachable yet, commands will fail until it is", "url", cfg.Ollama.URL, "error", err)
	}

	sys.agent = agent.New(client, dispatcher, logger)
	sys.engine = engine
	return sys, nil
}

// runAsk resolves a single command and prints the result as indented
// JSON.
func runAsk(ctx context.Context, stdout io.Writer, configPath, command string) error {
	sys, err := bootstrap(ctx, stdout, configPath)
	if err != nil {
		return err
	}
	defer sys.close()

	return printResult(stdout, sys.agent.HandleCommand(ctx, command))
}

// runCheck evaluates the stored automation rules once, without going
// through the model.
func runCheck(ctx context.Context, stdout io.Writer, configPath, period string) error {
	sys, err := bootstrap(ctx, stdout, configPath)
	if err != nil {
		return err
	}
	defer sys.close()

	return printResult(stdout, sys.engine.Check(ctx, period))
}

// runChat reads commands line by line until EOF, "exit", or "quit",
// resolving each one through the agent.
func runChat(ctx context.Context, stdin io.Reader, stdout io.Writer, configPath string) error {
	sys, err := bootstrap(ctx, stdout, configPath)
	if err != nil {
		return err
	}
	defer sys.close()

	fmt.Fprintln(stdout, "hearth ready. Type a command, or 'exit' to quit.")

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := printResult(stdout, sys.agent.HandleCommand(ctx, line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	fmt.Fprintln(stdout, "bye")
	return nil
}

// printResult writes a result object as indented JSON.
func printResult(w io.Writer, result map[string]any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
