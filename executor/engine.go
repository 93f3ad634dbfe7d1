package executor

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cnosuke/mcp-exec-interactive/types"
	"go.uber.org/zap"
)

type waitResult struct {
	state *os.ProcessState
	err   error
}

// Run spawns the request's shell and blocks until it has terminated.
// Spawn failures, non-zero exits, signals and timeouts are all reported in
// the outcome. Cancelling ctx kills the child the same way a timeout does.
func (e *Engine) Run(ctx context.Context, req *types.ExecutionRequest) types.ExecutionOutcome {
	outcome := types.ExecutionOutcome{
		WorkingDir: req.WorkingDir,
		Shell:      req.Invocation.Shell,
		Args:       req.Invocation.Args,
		Mode:       req.Mode,
	}

	session := e.newSession(req)

	startedAt := time.Now()
	outcome.StartedAtEpochMillis = startedAt.UnixMilli()

	zap.S().Debugw("spawning shell",
		"shell", req.Invocation.Shell,
		"args", req.Invocation.Args,
		"working_dir", req.WorkingDir,
		"mode", req.Mode)

	if err := session.start(); err != nil {
		outcome.Termination = types.TerminationSpawnFailed
		outcome.FailureReason = err.Error()
		outcome.DurationMillis = time.Since(startedAt).Milliseconds()
		zap.S().Warnw("failed to spawn shell",
			"shell", req.Invocation.Shell,
			"error", err)
		return outcome
	}
	outcome.PID = session.pid()

	done := make(chan waitResult, 1)
	go func() {
		state, err := session.wait()
		done <- waitResult{state: state, err: err}
	}()

	var timeoutC <-chan time.Time
	var timer *time.Timer
	if req.Timeout > 0 {
		timer = time.NewTimer(req.Timeout)
		timeoutC = timer.C
	}

	var result waitResult
	var forcedReason string
	select {
	case result = <-done:
	case <-timeoutC:
		forcedReason = fmt.Sprintf("Command timed out after %ss", formatSeconds(req.TimeoutSec))
	case <-ctx.Done():
		forcedReason = fmt.Sprintf("Command canceled: %v", ctx.Err())
	}
	if timer != nil {
		timer.Stop()
	}

	if forcedReason != "" {
		zap.S().Infow("terminating shell",
			"pid", outcome.PID,
			"reason", forcedReason)
		if err := session.terminate(); err != nil {
			zap.S().Warnw("failed to terminate shell", "pid", outcome.PID, "error", err)
		}
		// the OS must confirm termination before the outcome is final
		result = <-done
	}

	outcome.Stdout = session.stdout()
	outcome.Stderr = session.stderr()
	outcome.ExitCode, outcome.TerminationSignal = exitDetails(result.state)
	outcome.DurationMillis = time.Since(startedAt).Milliseconds()

	switch {
	case forcedReason != "":
		outcome.Termination = types.TerminationTimedOut
		outcome.FailureReason = forcedReason
	case outcome.TerminationSignal != "":
		outcome.Termination = types.TerminationSignaled
	default:
		outcome.Termination = types.TerminationExited
		if result.state == nil && result.err != nil {
			outcome.FailureReason = result.err.Error()
		}
	}
	outcome.Succeeded = outcome.Termination == types.TerminationExited &&
		outcome.ExitCode != nil && *outcome.ExitCode == 0

	zap.S().Debugw("shell finished",
		"pid", outcome.PID,
		"termination", outcome.Termination,
		"exit_code", outcome.ExitCode,
		"signal", outcome.TerminationSignal,
		"duration_ms", outcome.DurationMillis)

	return outcome
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}
