package cmd

import (
	"github.com/cnosuke/mcp-exec-interactive/config"
	"github.com/cnosuke/mcp-exec-interactive/logger"
	"github.com/cnosuke/mcp-exec-interactive/server"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   DefaultConfigPath,
		Usage:   "path to the configuration file",
	}
}

func debugFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "debug",
		Usage: "enable debug logging",
	}
}

// NewServerCommand creates the server command
func NewServerCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Start the MCP server on stdio",
		Flags:   []cli.Flag{configFlag(), debugFlag()},
		Action:  runServer,
	}
}

// loadConfig reads the configuration file and applies command line overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration file")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	return cfg, nil
}

// runServer starts the server
func runServer(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if err := logger.InitLogger(cfg.Debug, cfg.Log); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	defer logger.Sync()

	srv, err := server.NewServer(cfg, c.App.Name, c.App.Version)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	return srv.Start()
}
