package executor

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cnosuke/mcp-exec-interactive/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var (
	ErrEmptyCommand         = errors.New("empty command")
	ErrUnsupportedShell     = errors.New("unsupported shell")
	ErrUnsupportedMode      = errors.New("unsupported mode")
	ErrWorkingDirNotFound   = errors.New("directory does not exist")
	ErrWorkingDirNotAllowed = errors.New("access to directory not allowed")
)

// NewRequest validates params and resolves them into an immutable request.
// Nothing is spawned here; every error returned is a construction error.
func (e *Engine) NewRequest(params Params) (*types.ExecutionRequest, error) {
	if strings.TrimSpace(params.Command) == "" {
		return nil, ErrEmptyCommand
	}

	shell := e.defaultShell
	if params.Shell != "" {
		shell = types.ShellKind(params.Shell)
		if shell != types.ShellBash && shell != types.ShellSh {
			return nil, errors.Wrapf(ErrUnsupportedShell, "%q", params.Shell)
		}
	}

	mode := e.defaultMode
	if params.Mode != "" {
		mode = types.ExecMode(params.Mode)
		if mode != types.ModePTY && mode != types.ModePipe {
			return nil, errors.Wrapf(ErrUnsupportedMode, "%q", params.Mode)
		}
	}

	login := e.defaultLogin
	if params.Login != nil {
		login = *params.Login
	}
	interactive := e.defaultInteractive
	if params.Interactive != nil {
		interactive = *params.Interactive
	}

	workingDir, err := e.resolveWorkingDir(params.Cwd)
	if err != nil {
		return nil, err
	}

	timeoutSec := e.defaultTimeoutSec
	if params.TimeoutSec != nil {
		timeoutSec = *params.TimeoutSec
	}

	req := &types.ExecutionRequest{
		Command:     params.Command,
		WorkingDir:  workingDir,
		Timeout:     timeoutFromSeconds(timeoutSec),
		TimeoutSec:  timeoutSec,
		Env:         e.buildEnvironment(params.Env, mode),
		Shell:       shell,
		Login:       login,
		Interactive: interactive,
		Mode:        mode,
		Invocation:  BuildInvocation(shell, params.Command, login, interactive),
	}

	zap.S().Debugw("execution request built",
		"shell", req.Shell,
		"args", req.Invocation.Args,
		"working_dir", req.WorkingDir,
		"timeout", req.Timeout,
		"mode", req.Mode)

	return req, nil
}

// timeoutFromSeconds floors to whole milliseconds; anything below 1ms means no timeout
func timeoutFromSeconds(sec float64) time.Duration {
	if sec <= 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 0
	}
	return time.Duration(math.Floor(sec*1000)) * time.Millisecond
}

// resolveWorkingDir returns an absolute, existing and allowed directory
func (e *Engine) resolveWorkingDir(dir string) (string, error) {
	cwd, err := e.getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current working directory")
	}

	if dir == "" {
		dir = e.defaultWorkingDir
	}
	if dir == "" {
		dir = cwd
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	dir = filepath.Clean(dir)

	stat, err := os.Stat(dir)
	if err != nil || !stat.IsDir() {
		return "", errors.Wrapf(ErrWorkingDirNotFound, "%s", dir)
	}

	if !e.IsDirectoryAllowed(dir) {
		return "", errors.Wrapf(ErrWorkingDirNotAllowed, "%s", dir)
	}

	return dir, nil
}

// IsDirectoryAllowed checks if directory access is allowed
func (e *Engine) IsDirectoryAllowed(dir string) bool {
	// Allow all if the allowed list is empty
	if len(e.allowedDirs) == 0 {
		return true
	}

	dir = filepath.Clean(dir)
	for _, allowedDir := range e.allowedDirs {
		allowedDir = filepath.Clean(allowedDir)
		if allowedDir == string(filepath.Separator) {
			return true
		}
		if dir == allowedDir || strings.HasPrefix(dir, allowedDir+string(filepath.Separator)) {
			return true
		}
	}

	return false
}
