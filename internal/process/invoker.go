// Package process runs external programs and captures their output.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps draining output after the child is
// killed, in case a grandchild still holds the pipes.
const waitDelay = 2 * time.Second

// Result is the captured outcome of one process run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Invoker runs an executable to completion.
type Invoker interface {
	Run(ctx context.Context, executable string, args []string) (*Result, error)
}

// LaunchError means the process never started.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExecutionError means the process ran and exited non-zero (or was killed).
type ExecutionError struct {
	Executable string
	ExitCode   int
	Stderr     string
	Err        error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Executable, e.ExitCode)
	if tail := lastLine(e.Stderr); tail != "" {
		msg += ": " + tail
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func IsLaunchError(err error) bool {
	var target *LaunchError
	return errors.As(err, &target)
}

func IsExecutionError(err error) bool {
	var target *ExecutionError
	return errors.As(err, &target)
}

// ExecInvoker runs processes with os/exec. The zero value is ready to use.
type ExecInvoker struct {
	// Env, when non-nil, replaces the inherited environment.
	Env []string
	// Dir is the working directory; empty means the caller's.
	Dir string
}

func NewExecInvoker() *ExecInvoker {
	return &ExecInvoker{}
}

// Run starts executable with args and waits for it to exit. Cancelling ctx
// kills the child. On a non-zero exit the captured Result is returned
// together with an *ExecutionError.
func (inv *ExecInvoker) Run(ctx context.Context, executable string, args []string) (*Result, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = inv.Env
	cmd.Dir = inv.Dir
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Executable: executable, Err: err}
	}

	waitErr := cmd.Wait()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if waitErr == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return result, fmt.Errorf("wait for %s: %w", executable, waitErr)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		waitErr = errors.Join(waitErr, ctxErr)
	}
	return result, &ExecutionError{
		Executable: executable,
		ExitCode:   result.ExitCode,
		Stderr:     result.Stderr,
		Err:        waitErr,
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
