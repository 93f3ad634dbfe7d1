package executor

import (
	"context"
	"os"
	"time"

	"github.com/cnosuke/mcp-exec-interactive/config"
	"github.com/cnosuke/mcp-exec-interactive/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// CommandExecutor is the main interface for shell execution
type CommandExecutor interface {
	// Execute validates params, runs the command once and returns its outcome.
	// The error is non-nil only when the request is rejected before spawning.
	Execute(ctx context.Context, params Params) (types.ExecutionOutcome, error)
}

// Params are the caller-facing inputs of one execution
type Params struct {
	// Command is passed verbatim as the argument following -c
	Command string

	// Cwd is the working directory; relative paths resolve against the current directory
	Cwd string

	// TimeoutSec is the timeout in seconds; zero or negative disables it
	TimeoutSec *float64

	// Env is merged over the inherited environment
	Env map[string]string

	// Shell is "bash" or "sh"
	Shell string

	// Login and Interactive are ignored for sh
	Login       *bool
	Interactive *bool

	// Mode is "pty" or "pipe"
	Mode string
}

// Option customizes an Engine
type Option func(*Engine)

// WithEnviron sets the source of the inherited environment
func WithEnviron(environ func() []string) Option {
	return func(e *Engine) {
		e.environ = environ
	}
}

// WithGetwd sets the source of the current working directory
func WithGetwd(getwd func() (string, error)) Option {
	return func(e *Engine) {
		e.getwd = getwd
	}
}

// Engine builds requests and runs them in child sessions. It holds no
// per-execution state and is safe for concurrent use.
type Engine struct {
	defaultShell       types.ShellKind
	defaultLogin       bool
	defaultInteractive bool
	defaultMode        types.ExecMode
	defaultTimeoutSec  float64
	defaultWorkingDir  string
	allowedDirs        []string
	environment        map[string]string
	searchPaths        []string
	pathBehavior       string
	term               string
	ptyCols            uint16
	ptyRows            uint16
	drainTimeout       time.Duration

	environ func() []string
	getwd   func() (string, error)
}

// NewEngine creates a new Engine from the configuration
// Invalid settings fall back to their defaults with a warning, so construction
// never fails.
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	zap.S().Infow("creating new execution engine",
		"default_shell", cfg.Exec.DefaultShell,
		"mode", cfg.Exec.Mode)

	shell := types.ShellKind(cfg.Exec.DefaultShell)
	if shell != types.ShellBash && shell != types.ShellSh {
		zap.S().Warnw("Invalid default_shell setting, using default 'bash'",
			"value", cfg.Exec.DefaultShell)
		shell = types.ShellBash
	}

	mode := types.ExecMode(cfg.Exec.Mode)
	if mode != types.ModePTY && mode != types.ModePipe {
		zap.S().Warnw("Invalid mode setting, using default 'pty'",
			"value", cfg.Exec.Mode)
		mode = types.ModePTY
	}

	// Validate PathBehavior
	pathBehavior := cfg.Exec.PathBehavior
	if pathBehavior != "prepend" && pathBehavior != "replace" && pathBehavior != "append" {
		zap.S().Warnw("Invalid path_behavior setting, using default 'prepend'",
			"value", pathBehavior)
		pathBehavior = "prepend"
	}

	term := cfg.Exec.Term
	if term == "" {
		term = defaultTerm
	}

	cols, rows := cfg.Exec.PtyCols, cfg.Exec.PtyRows
	if cols == 0 {
		cols = defaultPtyCols
	}
	if rows == 0 {
		rows = defaultPtyRows
	}

	drainTimeout := time.Duration(cfg.Exec.DrainTimeoutMs) * time.Millisecond
	if drainTimeout <= 0 {
		drainTimeout = defaultDrainTimeout
	}

	e := &Engine{
		defaultShell:       shell,
		defaultLogin:       cfg.Exec.Login,
		defaultInteractive: cfg.Exec.Interactive,
		defaultMode:        mode,
		defaultTimeoutSec:  cfg.Exec.DefaultTimeoutSec,
		defaultWorkingDir:  cfg.Exec.DefaultWorkingDir,
		allowedDirs:        cfg.Exec.AllowedDirs,
		environment:        cfg.Exec.Environment,
		searchPaths:        cfg.Exec.SearchPaths,
		pathBehavior:       pathBehavior,
		term:               term,
		ptyCols:            cols,
		ptyRows:            rows,
		drainTimeout:       drainTimeout,
		environ:            os.Environ,
		getwd:              os.Getwd,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute builds a request from params and runs it
func (e *Engine) Execute(ctx context.Context, params Params) (types.ExecutionOutcome, error) {
	if err := ctx.Err(); err != nil {
		return types.ExecutionOutcome{}, errors.Wrap(err, "execution canceled before spawn")
	}
	req, err := e.NewRequest(params)
	if err != nil {
		return types.ExecutionOutcome{}, err
	}
	return e.Run(ctx, req), nil
}
