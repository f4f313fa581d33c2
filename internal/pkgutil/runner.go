//go:generate mockgen -destination=./mocks/runner.go -package=mocks . Runner

package pkgutil

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/mordilloSan/go_logger/logger"
)

// DefaultTimeout bounds a single pkgutil invocation.
const DefaultTimeout = 30 * time.Second

// Runner invokes pkgutil with the given arguments and returns its standard
// output. A failed invocation is reported as an *ExecutionError.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the real pkgutil binary, one child process per call.
type ExecRunner struct {
	// Path defaults to Executable. Tests point it at a stand-in script.
	Path string
	// Timeout defaults to DefaultTimeout. A negative value disables it.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner for /usr/sbin/pkgutil with the given
// timeout. A zero timeout selects DefaultTimeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Path: Executable, Timeout: timeout}
}

// Run executes pkgutil. Standard error is discarded; invalid UTF-8 in
// standard output is replaced rather than rejected.
func (r *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	path := r.Path
	if path == "" {
		path = Executable
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	logger.Debugf("pkgutil %s (%s)", strings.Join(args, " "), time.Since(start).Round(time.Millisecond))

	if err != nil {
		execErr := &ExecutionError{Args: append([]string(nil), args...), ExitCode: -1, Err: err}

		// A killed process also reports an ExitError; prefer the context
		// error so callers can tell a timeout from a real failure.
		if ctxErr := ctx.Err(); ctxErr != nil {
			execErr.Err = ctxErr
			return "", execErr
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			execErr.ExitCode = exitErr.ExitCode()
		}
		logger.Debugf("pkgutil %s: exit code %d", strings.Join(args, " "), execErr.ExitCode)
		return "", execErr
	}

	return strings.ToValidUTF8(stdout.String(), "\uFFFD"), nil
}

// RunCommand runs a typed Command through r.
func RunCommand(ctx context.Context, r Runner, cmd Command) (string, error) {
	return r.Run(ctx, cmd.Args()...)
}
