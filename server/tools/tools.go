package tools

import (
	"github.com/cnosuke/mcp-exec-interactive/executor"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterAllTools - Register all tools with the server
func RegisterAllTools(mcpServer *server.MCPServer, cmdExecutor executor.CommandExecutor) error {
	// Register exec_i tool
	if err := RegisterExecInteractiveTool(mcpServer, cmdExecutor); err != nil {
		return err
	}

	return nil
}
