package executor

import "github.com/cnosuke/mcp-exec-interactive/types"

// BuildArgs returns the argument vector for the shell. The command is
// passed as the single argument after -c and is not escaped; callers own
// sanitizing untrusted input. sh gets no -l/-i flags.
func BuildArgs(shell types.ShellKind, command string, login, interactive bool) []string {
	if !shell.SupportsSessionFlags() {
		return []string{"-c", command}
	}

	args := make([]string, 0, 4)
	if login {
		args = append(args, "-l")
	}
	if interactive {
		args = append(args, "-i")
	}
	return append(args, "-c", command)
}

// BuildInvocation resolves the shell binary and its arguments
func BuildInvocation(shell types.ShellKind, command string, login, interactive bool) types.ShellInvocation {
	return types.ShellInvocation{
		Shell: shell,
		Args:  BuildArgs(shell, command, login, interactive),
	}
}
