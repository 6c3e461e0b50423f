package sandbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestProcessExecutor_CapturesStdout(t *testing.T) {
	e := NewProcessExecutor()

	stdout, stderr, err := e.Run(context.Background(), t.TempDir(), []string{"echo", "hi"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stdout != "hi\n" {
		t.Errorf("Expected stdout %q, got %q", "hi\n", stdout)
	}
	if stderr != "" {
		t.Errorf("Expected empty stderr, got %q", stderr)
	}
}

func TestProcessExecutor_CapturesStderrAndExitError(t *testing.T) {
	e := NewProcessExecutor()

	stdout, stderr, err := e.Run(context.Background(), t.TempDir(),
		[]string{"sh", "-c", "echo oops >&2; exit 3"}, 5*time.Second)
	if err == nil {
		t.Fatal("Expected non-zero exit to surface as error")
	}
	if !strings.Contains(err.Error(), "exit status 3") {
		t.Errorf("Expected exit status 3, got %v", err)
	}
	if stdout != "" || stderr != "oops\n" {
		t.Errorf("Expected stderr capture, got stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestProcessExecutor_Timeout(t *testing.T) {
	e := NewProcessExecutor()

	start := time.Now()
	_, _, err := e.Run(context.Background(), t.TempDir(), []string{"sleep", "5"}, 100*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected prompt abort, took %s", elapsed)
	}
}

func TestProcessExecutor_RunsInWorkspace(t *testing.T) {
	e := NewProcessExecutor()
	workspace := t.TempDir()

	stdout, _, err := e.Run(context.Background(), workspace, []string{"pwd"}, 5*time.Second)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(stdout) == "" {
		t.Fatal("Expected pwd output")
	}
	// Resolved paths may differ through symlinks; the directory name is stable.
	if !strings.HasSuffix(strings.TrimSpace(stdout), lastPathComponent(workspace)) {
		t.Errorf("Expected command to run inside %s, got %s", workspace, stdout)
	}
}

func lastPathComponent(path string) string {
	parts := strings.Split(strings.TrimRight(path, "/"), "/")
	return parts[len(parts)-1]
}
