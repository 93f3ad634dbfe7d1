package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	DefaultConfigPath = "config.yml"
)

// NewApp builds the CLI application
func NewApp(name, version, revision string) *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s (%s)", version, revision)
	app.Name = name
	app.Usage = "MCP server running shell commands through login/interactive shells"
	// env values may contain commas
	app.DisableSliceFlagSeparator = true

	// Add subcommands
	app.Commands = []*cli.Command{
		NewServerCommand(),
		NewRunCommand(),
	}
	return app
}

// Execute runs the root command
func Execute(name, version, revision string) {
	if err := NewApp(name, version, revision).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
