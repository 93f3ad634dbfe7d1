package executor

import (
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/cnosuke/mcp-exec-interactive/types"
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const defaultDrainTimeout = 2 * time.Second

// childSession is one spawned shell. Nothing is ever written to it; the
// engine only observes its output and termination.
type childSession interface {
	// start spawns the process
	start() error
	pid() int
	// wait blocks until the process exited and its output was drained
	wait() (*os.ProcessState, error)
	// terminate force-kills the process along with its group (pipe) or session (pty)
	terminate() error
	stdout() string
	stderr() string
}

func (e *Engine) newSession(req *types.ExecutionRequest) childSession {
	if req.Mode == types.ModePipe {
		return newPipeSession(req, e.drainTimeout)
	}
	return newPtySession(req, e.ptyCols, e.ptyRows, e.drainTimeout)
}

func newShellCommand(req *types.ExecutionRequest) *exec.Cmd {
	cmd := exec.Command(string(req.Invocation.Shell), req.Invocation.Args...)
	cmd.Dir = req.WorkingDir
	cmd.Env = req.Env
	return cmd
}

// killProcessGroup sends SIGKILL to the group led by p, falling back to p alone
func killProcessGroup(p *os.Process) error {
	if p == nil {
		return nil
	}
	if err := unix.Kill(-p.Pid, unix.SIGKILL); err == nil {
		return nil
	}
	if err := p.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return errors.Wrapf(err, "failed to kill process %d", p.Pid)
	}
	return nil
}

// killSession kills the group led by p and every other process still in
// the session p leads. Job-controlled shells move jobs into their own groups.
func killSession(p *os.Process) error {
	if p == nil {
		return nil
	}
	err := killProcessGroup(p)

	members, listErr := sessionMembers(p.Pid)
	if listErr != nil {
		return errors.CombineErrors(err, listErr)
	}
	for _, pid := range members {
		if kerr := unix.Kill(pid, unix.SIGKILL); kerr != nil && !errors.Is(kerr, unix.ESRCH) {
			err = errors.CombineErrors(err, errors.Wrapf(kerr, "failed to kill session member %d", pid))
		}
	}
	return err
}

// sessionMembers lists the pids whose session id is sid, sid itself excluded.
// Without a /proc there is nothing to enumerate.
func sessionMembers(sid int) ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list processes")
	}

	var pids []int
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == sid {
			continue
		}
		if s, err := unix.Getsid(pid); err == nil && s == sid {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// exitDetails extracts the exit code or terminating signal. A signaled
// process has no exit code; signal 0 counts as no signal.
func exitDetails(state *os.ProcessState) (*int, string) {
	if state == nil {
		return nil, ""
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return nil, signalName(ws.Signal())
	}
	code := state.ExitCode()
	if code < 0 {
		return nil, ""
	}
	return &code, ""
}

func signalName(sig syscall.Signal) string {
	if sig == 0 {
		return ""
	}
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return sig.String()
}
