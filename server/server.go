package server

import (
	"github.com/cockroachdb/errors"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cnosuke/mcp-exec-interactive/config"
	"github.com/cnosuke/mcp-exec-interactive/executor"
	"github.com/cnosuke/mcp-exec-interactive/server/tools"
)

// Server - MCP server exposing the exec_i tool over stdio
type Server struct {
	engine    *executor.Engine
	mcpServer *mcpserver.MCPServer
}

// NewServer - Create the execution engine and the MCP server with all tools registered
func NewServer(cfg *config.Config, name, version string) (*Server, error) {
	zap.S().Debugw("creating execution engine",
		"default_shell", cfg.Exec.DefaultShell,
		"mode", cfg.Exec.Mode,
		"search_paths", cfg.Exec.SearchPaths,
		"path_behavior", cfg.Exec.PathBehavior)

	engine := executor.NewEngine(cfg)

	zap.S().Debugw("creating MCP server", "name", name, "version", version)
	mcpServer := mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(false))

	// Register all tools
	zap.S().Debugw("registering tools")
	if err := tools.RegisterAllTools(mcpServer, engine); err != nil {
		zap.S().Errorw("failed to register tools", "error", err)
		return nil, errors.Wrap(err, "failed to register tools")
	}

	return &Server{
		engine:    engine,
		mcpServer: mcpServer,
	}, nil
}

// Start - Serve MCP requests on stdio until the client disconnects
func (s *Server) Start() error {
	zap.S().Infow("starting MCP server with stdio transport")

	if err := mcpserver.ServeStdio(s.mcpServer); err != nil {
		zap.S().Errorw("failed to serve", "error", err)
		return errors.Wrap(err, "failed to serve")
	}

	zap.S().Infow("server shutting down")
	return nil
}
