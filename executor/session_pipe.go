package executor

import (
	"bytes"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/cnosuke/mcp-exec-interactive/types"
)

// pipeSession runs the shell with separate stdout/stderr pipes and stdin
// bound to the null device.
type pipeSession struct {
	cmd       *exec.Cmd
	stdoutBuf bytes.Buffer
	stderrBuf bytes.Buffer
}

func newPipeSession(req *types.ExecutionRequest, waitDelay time.Duration) *pipeSession {
	s := &pipeSession{cmd: newShellCommand(req)}
	s.cmd.Stdin = nil
	s.cmd.Stdout = &s.stdoutBuf
	s.cmd.Stderr = &s.stderrBuf
	// own process group so the kill reaches the shell's children too
	s.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	// orphaned grandchildren may keep the pipes open after the shell exits
	s.cmd.WaitDelay = waitDelay
	return s
}

func (s *pipeSession) start() error {
	return s.cmd.Start()
}

func (s *pipeSession) pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

func (s *pipeSession) wait() (*os.ProcessState, error) {
	err := s.cmd.Wait()
	return s.cmd.ProcessState, err
}

func (s *pipeSession) terminate() error {
	return killProcessGroup(s.cmd.Process)
}

func (s *pipeSession) stdout() string {
	return s.stdoutBuf.String()
}

func (s *pipeSession) stderr() string {
	return s.stderrBuf.String()
}
