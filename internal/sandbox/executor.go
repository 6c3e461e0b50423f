package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// ErrTimeout reports that a build or run step exceeded its wall-clock bound.
var ErrTimeout = errors.New("execution timed out")

// Executor runs one build or run step inside a workspace. Arguments are
// discrete argv entries, never a shell command line.
type Executor interface {
	Run(ctx context.Context, workspace string, argv []string, timeout time.Duration) (stdout, stderr string, err error)
}

// ProcessExecutor runs steps as plain subprocesses on the host. This is the
// default backend; it relies on the workspace directory for isolation and
// the timeout for resource bounding.
type ProcessExecutor struct{}

// NewProcessExecutor creates a subprocess-backed executor.
func NewProcessExecutor() *ProcessExecutor {
	return &ProcessExecutor{}
}

// Run executes argv with the workspace as working directory, capturing
// stdout and stderr separately. Both streams are returned even on failure
// so callers can surface diagnostics.
func (e *ProcessExecutor) Run(ctx context.Context, workspace string, argv []string, timeout time.Duration) (string, string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workspace

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return stdout.String(), stderr.String(), ErrTimeout
	}
	return stdout.String(), stderr.String(), err
}
