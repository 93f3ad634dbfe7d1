package types

import (
	"strings"
	"time"
)

// ShellKind - Shell binary that interprets the command
type ShellKind string

const (
	ShellBash ShellKind = "bash"
	ShellSh   ShellKind = "sh"
)

// SupportsSessionFlags reports whether -l / -i are passed to this shell
func (k ShellKind) SupportsSessionFlags() bool {
	return k == ShellBash
}

// ExecMode - How the child process is attached
type ExecMode string

const (
	// ModePTY attaches the child to a pseudo-terminal; stdout and stderr are merged
	ModePTY ExecMode = "pty"
	// ModePipe runs the child with separate stdout/stderr pipes and no stdin
	ModePipe ExecMode = "pipe"
)

// TerminationKind - The single reason an execution ended
type TerminationKind string

const (
	TerminationExited      TerminationKind = "exited"
	TerminationSignaled    TerminationKind = "signaled"
	TerminationTimedOut    TerminationKind = "timed_out"
	TerminationSpawnFailed TerminationKind = "spawn_failed"
)

// ShellInvocation - Resolved shell binary and argument vector
type ShellInvocation struct {
	Shell ShellKind `json:"shell"`
	Args  []string  `json:"args"`
}

// ExecutionRequest - A validated, fully resolved request. Build it with
// executor.Engine.NewRequest; do not modify it afterwards.
type ExecutionRequest struct {
	Command     string
	WorkingDir  string
	Timeout     time.Duration
	TimeoutSec  float64
	Env         []string
	Shell       ShellKind
	Login       bool
	Interactive bool
	Mode        ExecMode
	Invocation  ShellInvocation
}

// ExecutionOutcome - Structure for shell execution results
type ExecutionOutcome struct {
	Succeeded            bool            `json:"succeeded"`
	ExitCode             *int            `json:"exit_code,omitempty"`
	TerminationSignal    string          `json:"termination_signal,omitempty"`
	FailureReason        string          `json:"failure_reason,omitempty"`
	Stdout               string          `json:"stdout"`
	Stderr               string          `json:"stderr"`
	StartedAtEpochMillis int64           `json:"started_at_epoch_millis"`
	DurationMillis       int64           `json:"duration_millis"`
	WorkingDir           string          `json:"cwd"`
	Shell                ShellKind       `json:"shell"`
	Args                 []string        `json:"args"`
	Mode                 ExecMode        `json:"mode"`
	PID                  int             `json:"pid,omitempty"`
	Termination          TerminationKind `json:"termination"`
}

// Text renders the outcome as a block for humans and agents. It always
// starts with OK or FAILED; blank stdout/stderr sections are omitted.
func (o ExecutionOutcome) Text() string {
	var b strings.Builder
	if o.Succeeded {
		b.WriteString("OK")
	} else {
		b.WriteString("FAILED")
	}
	if strings.TrimSpace(o.Stdout) != "" {
		b.WriteString("\n\nstdout:\n")
		b.WriteString(o.Stdout)
	}
	if strings.TrimSpace(o.Stderr) != "" {
		b.WriteString("\n\nstderr:\n")
		b.WriteString(o.Stderr)
	}
	return b.String()
}
