// Package sandbox runs untrusted snippets: it wraps source in an
// output-capturing harness, materializes it into a disposable workspace,
// builds and runs it with a bounded wall clock, and guarantees cleanup.
package sandbox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// workspacePrefix marks directories owned by the sandbox so the sweeper
// never touches anything else under the root.
const workspacePrefix = "exec_"

// WorkspaceManager hands out uniquely named temporary directories, one per
// execution. Uniqueness comes from a nanosecond timestamp plus a process
// counter, which is enough to avoid collision between concurrent requests
// on the same host.
type WorkspaceManager struct {
	root string
	seq  atomic.Int64
}

// NewWorkspaceManager creates the workspace root if needed. The root is
// resolved to an absolute path so workspaces can be bind-mounted into
// containers.
func NewWorkspaceManager(root string) (*WorkspaceManager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create workspace root: %w", err)
	}
	return &WorkspaceManager{root: abs}, nil
}

// Create makes a fresh workspace directory and returns its absolute path.
func (m *WorkspaceManager) Create() (string, error) {
	name := fmt.Sprintf("%s%d_%d", workspacePrefix, time.Now().UnixNano(), m.seq.Add(1))
	path := filepath.Join(m.root, name)
	if err := os.Mkdir(path, 0755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return path, nil
}

// Release deletes a workspace tree. Best effort: failures are logged and
// swallowed so cleanup never masks the primary result.
func (m *WorkspaceManager) Release(path string) {
	if path == "" {
		return
	}
	if err := os.RemoveAll(path); err != nil {
		slog.Warn("Failed to remove workspace", "path", path, "error", err)
	}
}

// SweepOlderThan removes leftover workspace directories older than maxAge.
// Runners clean up after themselves; this catches anything leaked by a
// crashed process.
func (m *WorkspaceManager) SweepOlderThan(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(m.root)
	if err != nil {
		return 0, fmt.Errorf("read workspace root: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), workspacePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(m.root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			slog.Warn("Failed to sweep stale workspace", "path", path, "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Root returns the absolute workspace root path.
func (m *WorkspaceManager) Root() string {
	return m.root
}
