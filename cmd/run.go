package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cnosuke/mcp-exec-interactive/executor"
	"github.com/cnosuke/mcp-exec-interactive/logger"
	"github.com/cnosuke/mcp-exec-interactive/types"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// NewRunCommand creates the run command, a one-shot execution without the MCP layer
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Run a single shell command and print the result",
		ArgsUsage: "<command>",
		Flags: []cli.Flag{
			configFlag(),
			debugFlag(),
			&cli.StringFlag{
				Name:  "cwd",
				Usage: "working directory",
			},
			&cli.Float64Flag{
				Name:  "timeout",
				Usage: "timeout in seconds (0 disables)",
			},
			&cli.StringSliceFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "environment variable to merge in, as KEY=VALUE",
			},
			&cli.StringFlag{
				Name:  "shell",
				Usage: "bash or sh",
			},
			&cli.BoolFlag{
				Name:  "login",
				Value: true,
				Usage: "run as login shell",
			},
			&cli.BoolFlag{
				Name:  "interactive",
				Value: true,
				Usage: "run as interactive shell",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "pty or pipe",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print the full outcome as JSON",
			},
		},
		Action: runCommand,
	}
}

func runCommand(c *cli.Context) error {
	command := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(command) == "" {
		return cli.Exit("command is required", 2)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// stay quiet on stderr unless asked
	if cfg.Debug || cfg.Log != "" {
		if err := logger.InitLogger(cfg.Debug, cfg.Log); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		defer logger.Sync()
	}

	engine := executor.NewEngine(cfg)

	params := executor.Params{
		Command: command,
		Cwd:     c.String("cwd"),
		Shell:   c.String("shell"),
		Mode:    c.String("mode"),
	}
	if c.IsSet("timeout") {
		timeout := c.Float64("timeout")
		params.TimeoutSec = &timeout
	}
	if c.IsSet("login") {
		login := c.Bool("login")
		params.Login = &login
	}
	if c.IsSet("interactive") {
		interactive := c.Bool("interactive")
		params.Interactive = &interactive
	}
	if params.Env, err = parseEnvAssignments(c.StringSlice("env")); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	// Ctrl-C kills the child the same way a timeout does
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := engine.Execute(ctx, params)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if err := printOutcome(c, outcome); err != nil {
		return err
	}

	if !outcome.Succeeded {
		return cli.Exit("", exitStatus(outcome))
	}
	return nil
}

func printOutcome(c *cli.Context, outcome types.ExecutionOutcome) error {
	if c.Bool("json") {
		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		return errors.Wrap(encoder.Encode(outcome), "failed to encode outcome")
	}
	_, err := fmt.Fprintln(c.App.Writer, outcome.Text())
	return err
}

// exitStatus mirrors the child's exit code when it has a non-zero one
func exitStatus(outcome types.ExecutionOutcome) int {
	if outcome.ExitCode != nil && *outcome.ExitCode != 0 {
		return *outcome.ExitCode
	}
	return 1
}

// parseEnvAssignments converts KEY=VALUE flags into a map
func parseEnvAssignments(assignments []string) (map[string]string, error) {
	if len(assignments) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(assignments))
	for _, assignment := range assignments {
		key, value, ok := strings.Cut(assignment, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid env assignment %q, expected KEY=VALUE", assignment)
		}
		env[key] = value
	}
	return env, nil
}
