// Package runner executes scanner command specs as child processes.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/coliovacruz/nmap-mcp-server/pkg/command"
	"github.com/rs/zerolog"
)

var (
	ErrExecutableNotFound = errors.New("executable not found")
	ErrSpawnFailed        = errors.New("failed to start process")
	ErrScanAborted        = errors.New("scan aborted")
)

// waitDelay bounds how long Wait keeps reading output after the process
// group was killed.
const waitDelay = 500 * time.Millisecond

// Result is the outcome of a process that started and exited.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Success reports whether the process exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner starts one child process per call. It holds no per-call state and
// is safe for concurrent use.
type Runner struct {
	logger  zerolog.Logger
	timeout time.Duration
}

// New creates a Runner. A zero timeout leaves scans unbounded.
func New(logger zerolog.Logger, timeout time.Duration) *Runner {
	return &Runner{
		logger:  logger.With().Str("component", "runner").Logger(),
		timeout: timeout,
	}
}

// IsAvailable checks if the executable can be resolved.
func IsAvailable(executable string) bool {
	_, err := exec.LookPath(executable)
	return err == nil
}

// Run executes spec and waits for it to exit. A nonzero exit code is not an
// error; errors are returned only when the process could not be started or
// was killed because ctx ended.
func (r *Runner) Run(ctx context.Context, spec command.Spec) (Result, error) {
	if len(spec) == 0 {
		return Result{}, fmt.Errorf("%w: empty command", ErrSpawnFailed)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, spec.Executable(), spec.Args()...) //nolint:gosec
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	r.logger.Debug().Strs("argv", spec).Msg("starting process")
	start := time.Now()

	if err := cmd.Start(); err != nil {
		switch {
		case ctx.Err() != nil:
			return Result{}, fmt.Errorf("%w: %w", ErrScanAborted, ctx.Err())
		case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
			return Result{}, fmt.Errorf("%w: %s: %w", ErrExecutableNotFound, spec.Executable(), err)
		default:
			return Result{}, fmt.Errorf("%w: %s: %w", ErrSpawnFailed, spec.Executable(), err)
		}
	}

	waitErr := cmd.Wait()
	result := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if waitErr != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("%w after %s: %w", ErrScanAborted, result.Duration.Round(time.Millisecond), ctx.Err())
		}
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
		case errors.Is(waitErr, exec.ErrWaitDelay):
			// Exited, but a leftover child kept the output pipes open.
			r.logger.Warn().Msgf("%s left processes holding its output open", spec.Executable())
		default:
			return result, fmt.Errorf("failed to wait for %s: %w", spec.Executable(), waitErr)
		}
	}

	r.logger.Debug().
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("process exited")

	return result, nil
}
