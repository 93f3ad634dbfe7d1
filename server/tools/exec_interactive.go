package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/cnosuke/mcp-exec-interactive/executor"
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const ExecInteractiveToolName = "exec_i"

// RegisterExecInteractiveTool - Register the exec_i tool
func RegisterExecInteractiveTool(mcpServer *server.MCPServer, cmdExecutor executor.CommandExecutor) error {
	zap.S().Debugw("registering exec_i tool")

	mcpServer.AddTool(NewExecInteractiveTool(), NewExecInteractiveHandler(cmdExecutor))
	return nil
}

// NewExecInteractiveTool - Tool definition for exec_i
func NewExecInteractiveTool() mcp.Tool {
	return mcp.NewTool(ExecInteractiveToolName,
		mcp.WithDescription(fmt.Sprint(
			"Executes a shell command with login/interactive mode so shell rc files are sourced. ",
			"The command is passed verbatim to the shell's -c option. ",
			"Returns OK or FAILED followed by stdout and stderr.")),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Shell command to run."),
		),
		mcp.WithString("cwd",
			mcp.Description("Working directory."),
		),
		mcp.WithNumber("timeoutSec",
			mcp.Description("Timeout in seconds."),
		),
		mcp.WithObject("env",
			mcp.Description("Environment variables to merge in."),
		),
		mcp.WithString("shell",
			mcp.Description("Shell to use (default: bash)."),
			mcp.Enum("bash", "sh"),
		),
		mcp.WithBoolean("login",
			mcp.Description("If true, run as login shell (default: true)."),
		),
		mcp.WithBoolean("interactive",
			mcp.Description("If true, run as interactive shell (default: true)."),
		),
		mcp.WithString("mode",
			mcp.Description("pty merges stdout and stderr through a pseudo-terminal; pipe keeps them separate."),
			mcp.Enum("pty", "pipe"),
		),
	)
}

// NewExecInteractiveHandler - Tool handler running one command per call
func NewExecInteractiveHandler(cmdExecutor executor.CommandExecutor) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := ParseParams(request.GetArguments())
		if err != nil {
			zap.S().Warnw("invalid exec_i arguments", "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		zap.S().Debugw("executing exec_i",
			"command", params.Command,
			"cwd", params.Cwd)

		outcome, err := cmdExecutor.Execute(ctx, params)
		if err != nil {
			zap.S().Warnw("exec_i request rejected",
				"command", params.Command,
				"error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := mcp.NewToolResultText(outcome.Text())

		// Details for programmatic consumers
		jsonBytes, err := json.Marshal(outcome)
		if err != nil {
			zap.S().Errorw("failed to marshal result to JSON", "error", err)
			return result, nil
		}
		result.Content = append(result.Content, mcp.NewTextContent(string(jsonBytes)))
		return result, nil
	}
}

// ParseParams - Decode tool arguments. Only command is required; values of
// the wrong type are rejected, non-string env values are dropped.
func ParseParams(args map[string]any) (executor.Params, error) {
	var params executor.Params

	command, ok := args["command"].(string)
	if !ok || command == "" {
		return params, errors.New("command is required")
	}
	params.Command = command

	if v, present := args["cwd"]; present && v != nil {
		cwd, ok := v.(string)
		if !ok {
			return params, errors.New("cwd must be a string")
		}
		params.Cwd = cwd
	}

	if v, present := args["timeoutSec"]; present && v != nil {
		sec, ok := toFloat(v)
		if !ok || math.IsNaN(sec) {
			return params, errors.New("timeoutSec must be a number")
		}
		params.TimeoutSec = &sec
	}

	if v, present := args["env"]; present && v != nil {
		envVal, ok := v.(map[string]any)
		if !ok {
			return params, errors.New("env must be an object")
		}
		params.Env = make(map[string]string, len(envVal))
		for k, v := range envVal {
			if strVal, ok := v.(string); ok {
				params.Env[k] = strVal
			}
		}
	}

	for _, key := range []string{"shell", "mode"} {
		v, present := args[key]
		if !present || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return params, errors.Newf("%s must be a string", key)
		}
		if key == "shell" {
			params.Shell = s
		} else {
			params.Mode = s
		}
	}

	for _, key := range []string{"login", "interactive"} {
		v, present := args[key]
		if !present || v == nil {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return params, errors.Newf("%s must be a boolean", key)
		}
		if key == "login" {
			params.Login = &b
		} else {
			params.Interactive = &b
		}
	}

	return params, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
