package executor

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/cnosuke/mcp-exec-interactive/types"
	"github.com/cockroachdb/errors"
	"github.com/creack/pty"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	defaultPtyCols = 120
	defaultPtyRows = 30

	// output must stay quiet this long after exit before the slave is released
	ptySettleInterval = 25 * time.Millisecond
)

// ptySession runs the shell attached to a pseudo-terminal. The terminal
// merges stdout and stderr, so everything is reported as stdout.
type ptySession struct {
	cmd          *exec.Cmd
	size         *pty.Winsize
	drainTimeout time.Duration

	// master is non-blocking so deadlines and Close interrupt the reader
	master  *os.File
	slave   *os.File
	output  lockedBuffer
	readErr error
	drained chan struct{}
}

func newPtySession(req *types.ExecutionRequest, cols, rows uint16, drainTimeout time.Duration) *ptySession {
	return &ptySession{
		cmd:          newShellCommand(req),
		size:         &pty.Winsize{Cols: cols, Rows: rows},
		drainTimeout: drainTimeout,
		drained:      make(chan struct{}),
	}
}

func (s *ptySession) start() error {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open pseudo-terminal")
	}
	if err := pty.Setsize(ptmx, s.size); err != nil {
		_ = ptmx.Close()
		_ = tty.Close()
		return errors.Wrap(err, "failed to size pseudo-terminal")
	}
	master, err := nonblockingFile(ptmx)
	if err != nil {
		_ = tty.Close()
		return err
	}

	s.cmd.Stdin = tty
	s.cmd.Stdout = tty
	s.cmd.Stderr = tty
	// new session with the terminal (child fd 0) as controlling tty
	s.cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true, Ctty: 0}

	if err := s.cmd.Start(); err != nil {
		_ = master.Close()
		_ = tty.Close()
		return err
	}
	s.master = master
	// held until the shell is reaped so the master never sees EIO early
	s.slave = tty

	go func() {
		defer close(s.drained)
		_, err := io.Copy(&s.output, master)
		s.readErr = err
	}()
	return nil
}

// nonblockingFile re-opens f's descriptor in non-blocking mode so the
// runtime poller owns it, and closes f
func nonblockingFile(f *os.File) (*os.File, error) {
	fd, err := unix.FcntlInt(f.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	_ = f.Close()
	if err != nil {
		return nil, errors.Wrap(err, "failed to duplicate pseudo-terminal master")
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(err, "failed to make pseudo-terminal master non-blocking")
	}
	return os.NewFile(uintptr(fd), "/dev/ptmx"), nil
}

func (s *ptySession) pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

func (s *ptySession) wait() (*os.ProcessState, error) {
	err := s.cmd.Wait()

	s.settle()
	_ = s.slave.Close()

	// with the slave released the reader ends on EIO, unless something
	// left in the session still holds the terminal
	_ = s.master.SetReadDeadline(time.Now().Add(s.drainTimeout))
	<-s.drained
	if errors.Is(s.readErr, os.ErrDeadlineExceeded) {
		zap.S().Warnw("pty output not drained after exit, killing session leftovers",
			"pid", s.pid(),
			"drain_timeout", s.drainTimeout)
		if kerr := killSession(s.cmd.Process); kerr != nil {
			zap.S().Warnw("failed to kill session leftovers", "pid", s.pid(), "error", kerr)
		}
	}
	_ = s.master.Close()

	return s.cmd.ProcessState, err
}

// settle waits until the terminal stops delivering output, bounded by the
// drain timeout
func (s *ptySession) settle() {
	deadline := time.Now().Add(s.drainTimeout)
	last := s.output.Len()
	for time.Now().Before(deadline) {
		select {
		case <-s.drained:
			return
		case <-time.After(ptySettleInterval):
		}
		n := s.output.Len()
		if n == last {
			return
		}
		last = n
	}
}

func (s *ptySession) terminate() error {
	return killSession(s.cmd.Process)
}

func (s *ptySession) stdout() string {
	return s.output.String()
}

func (s *ptySession) stderr() string {
	return ""
}

// lockedBuffer is a bytes.Buffer safe for one writer and concurrent readers
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
