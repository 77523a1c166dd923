// Command agentctl is the CLI for the agent runtime.
//
// Usage:
//
//	agentctl run <agent> <intent> --config config.yaml
//	agentctl init-memory --agent <agent> [--force]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/fygarcia/AgentOS/agent"
	"github.com/fygarcia/AgentOS/config"
	"github.com/fygarcia/AgentOS/logger"
	"github.com/fygarcia/AgentOS/skill"
)

// CLI defines the command-line interface.
type CLI struct {
	Run        RunCmd        `cmd:"" help:"Run an agent against a single intent."`
	InitMemory InitMemoryCmd `cmd:"" name:"init-memory" help:"Create (or reset) an agent's memory directory."`

	Config    string `short:"c" help:"Path to YAML config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (text, json)." default:"text"`
}

// RunCmd runs one agent turn and prints the resulting RunResult.
type RunCmd struct {
	Agent       string `arg:"" help:"Agent name."`
	Intent      string `arg:"" help:"User intent text."`
	Description string `help:"Agent description, used only on first construction."`
}

func (c *RunCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("agentctl: shutting down")
		cancel()
	}()

	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	a := agent.New(c.Agent, c.Description, cfg)
	if err := a.Initialize(ctx, skill.NewExecutors()); err != nil {
		return fmt.Errorf("agentctl: initialize agent %q: %w", c.Agent, err)
	}

	result, err := a.Run(ctx, c.Intent)
	if err != nil {
		return fmt.Errorf("agentctl: run: %w", err)
	}

	fmt.Printf("intent_type: %s\n", result.IntentType)
	if result.FinalResponse != "" {
		fmt.Printf("response: %s\n", result.FinalResponse)
	}
	for i, step := range result.Plan {
		fmt.Printf("step_%d [%s]: %s\n", i, step.Role, step.Instruction)
		if out, ok := result.ToolOutputs[fmt.Sprintf("step_%d", i)]; ok {
			fmt.Printf("  output: %s\n", out)
		}
	}
	return nil
}

// InitMemoryCmd lazily creates an agent's memory directory without
// running a graph traversal — useful for provisioning agents ahead of
// their first real request (spec §4.2: memory.New already does this
// lazily, so init-memory is a thin, explicit entry point onto it).
type InitMemoryCmd struct {
	Agent string `required:"" help:"Agent name."`
	Force bool   `help:"Recreate the memory directory even if it already exists."`
}

func (c *InitMemoryCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	agentName := strings.ToLower(c.Agent) // agent.New lowercases the name too
	dir := fmt.Sprintf("%s/%s/memory", cfg.Memory.AgentsRoot, agentName)
	if c.Force {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("agentctl: remove existing memory dir %s: %w", dir, err)
		}
	}

	a := agent.New(agentName, "", cfg)
	if err := a.Initialize(context.Background(), skill.NewExecutors()); err != nil {
		return fmt.Errorf("agentctl: initialize agent %q: %w", agentName, err)
	}

	fmt.Printf("memory initialized for agent %q at %s\n", agentName, dir)
	return nil
}

func (cli *CLI) loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFiles(); err != nil {
		return nil, fmt.Errorf("agentctl: load env files: %w", err)
	}
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentctl"),
		kong.Description("CLI for the agent orchestration runtime"),
		kong.UsageOnError(),
	)

	slog.SetDefault(logger.New(cli.LogLevel, cli.LogFormat))

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
