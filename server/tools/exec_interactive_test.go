package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cnosuke/mcp-exec-interactive/executor"
	"github.com/cnosuke/mcp-exec-interactive/types"
	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// MockCommandExecutor - mock executor.CommandExecutor
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Execute(ctx context.Context, params executor.Params) (types.ExecutionOutcome, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(types.ExecutionOutcome), args.Error(1)
}

func newCallToolRequest(arguments map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = ExecInteractiveToolName
	request.Params.Arguments = arguments
	return request
}

func textAt(t *testing.T, result *mcp.CallToolResult, i int) string {
	t.Helper()
	require.Greater(t, len(result.Content), i)
	content, ok := result.Content[i].(mcp.TextContent)
	require.True(t, ok, "content %d is %T", i, result.Content[i])
	return content.Text
}

func TestRegisterAllTools(t *testing.T) {
	zap.ReplaceGlobals(zaptest.NewLogger(t))

	mcpServer := server.NewMCPServer("test", "0.0.1")
	err := RegisterAllTools(mcpServer, new(MockCommandExecutor))
	assert.NoError(t, err)
}

func TestNewExecInteractiveTool(t *testing.T) {
	tool := NewExecInteractiveTool()

	assert.Equal(t, "exec_i", tool.Name)
	assert.Equal(t, []string{"command"}, tool.InputSchema.Required)
	for _, name := range []string{"command", "cwd", "timeoutSec", "env", "shell", "login", "interactive", "mode"} {
		assert.Contains(t, tool.InputSchema.Properties, name)
	}
}

func TestExecInteractiveHandler_Success(t *testing.T) {
	zap.ReplaceGlobals(zaptest.NewLogger(t))

	exitCode := 0
	outcome := types.ExecutionOutcome{
		Succeeded:   true,
		ExitCode:    &exitCode,
		Stdout:      "hello\n",
		Shell:       types.ShellBash,
		Args:        []string{"-l", "-i", "-c", "echo hello"},
		Mode:        types.ModePTY,
		Termination: types.TerminationExited,
	}

	mockExecutor := new(MockCommandExecutor)
	mockExecutor.On("Execute", mock.Anything, executor.Params{Command: "echo hello"}).Return(outcome, nil)

	handler := NewExecInteractiveHandler(mockExecutor)
	result, err := handler(context.Background(), newCallToolRequest(map[string]any{"command": "echo hello"}))
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, "OK\n\nstdout:\nhello\n", textAt(t, result, 0))

	var details types.ExecutionOutcome
	require.NoError(t, json.Unmarshal([]byte(textAt(t, result, 1)), &details))
	assert.Equal(t, outcome, details)

	mockExecutor.AssertExpectations(t)
}

func TestExecInteractiveHandler_FailedOutcomeIsNotToolError(t *testing.T) {
	zap.ReplaceGlobals(zaptest.NewLogger(t))

	outcome := types.ExecutionOutcome{
		FailureReason: "Command timed out after 1s",
		Termination:   types.TerminationTimedOut,
	}
	mockExecutor := new(MockCommandExecutor)
	mockExecutor.On("Execute", mock.Anything, mock.Anything).Return(outcome, nil)

	handler := NewExecInteractiveHandler(mockExecutor)
	result, err := handler(context.Background(), newCallToolRequest(map[string]any{"command": "sleep 5", "timeoutSec": 1.0}))
	require.NoError(t, err)

	assert.False(t, result.IsError)
	assert.Equal(t, "FAILED", textAt(t, result, 0))
	assert.Contains(t, textAt(t, result, 1), `"failure_reason":"Command timed out after 1s"`)
}

func TestExecInteractiveHandler_RejectedRequest(t *testing.T) {
	zap.ReplaceGlobals(zaptest.NewLogger(t))

	mockExecutor := new(MockCommandExecutor)
	mockExecutor.On("Execute", mock.Anything, mock.Anything).
		Return(types.ExecutionOutcome{}, errors.Wrap(executor.ErrWorkingDirNotFound, "/missing"))

	handler := NewExecInteractiveHandler(mockExecutor)
	result, err := handler(context.Background(), newCallToolRequest(map[string]any{"command": "ls", "cwd": "/missing"}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textAt(t, result, 0), "directory does not exist")
}

func TestExecInteractiveHandler_MissingCommand(t *testing.T) {
	zap.ReplaceGlobals(zaptest.NewLogger(t))

	mockExecutor := new(MockCommandExecutor)
	handler := NewExecInteractiveHandler(mockExecutor)

	result, err := handler(context.Background(), newCallToolRequest(map[string]any{"cwd": "/tmp"}))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, textAt(t, result, 0), "command is required")
	mockExecutor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams(map[string]any{
		"command":     "echo $FOO",
		"cwd":         "work",
		"timeoutSec":  1.5,
		"env":         map[string]any{"FOO": "bar", "NUM": 3},
		"shell":       "sh",
		"login":       false,
		"interactive": true,
		"mode":        "pipe",
	})
	require.NoError(t, err)

	assert.Equal(t, "echo $FOO", params.Command)
	assert.Equal(t, "work", params.Cwd)
	require.NotNil(t, params.TimeoutSec)
	assert.Equal(t, 1.5, *params.TimeoutSec)
	assert.Equal(t, map[string]string{"FOO": "bar"}, params.Env)
	assert.Equal(t, "sh", params.Shell)
	require.NotNil(t, params.Login)
	assert.False(t, *params.Login)
	require.NotNil(t, params.Interactive)
	assert.True(t, *params.Interactive)
	assert.Equal(t, "pipe", params.Mode)
}

func TestParseParams_OptionalAbsent(t *testing.T) {
	params, err := ParseParams(map[string]any{"command": "true", "cwd": nil})
	require.NoError(t, err)

	assert.Equal(t, executor.Params{Command: "true"}, params)
}

func TestParseParams_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing command", map[string]any{}, "command is required"},
		{"command not a string", map[string]any{"command": 42}, "command is required"},
		{"cwd not a string", map[string]any{"command": "true", "cwd": 1}, "cwd must be a string"},
		{"timeout not a number", map[string]any{"command": "true", "timeoutSec": "10"}, "timeoutSec must be a number"},
		{"env not an object", map[string]any{"command": "true", "env": "FOO=bar"}, "env must be an object"},
		{"shell not a string", map[string]any{"command": "true", "shell": true}, "shell must be a string"},
		{"login not a boolean", map[string]any{"command": "true", "login": "yes"}, "login must be a boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
