package sandbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/shanti-jangam/collaborative-code-env/internal/store"
)

// StartSweeper runs a background goroutine that periodically removes stale
// leftover workspaces and asks the room store to drop empty rooms. Runners
// release their own workspaces and the coordinator deletes rooms on last
// leave; the sweeper catches whatever a crash or race left behind.
func StartSweeper(ctx context.Context, workspaces *WorkspaceManager, st store.Store, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Sweeper started", "interval", interval, "workspace_max_age", maxAge)

		for {
			select {
			case <-ticker.C:
				sweep(ctx, workspaces, st, maxAge)
			case <-ctx.Done():
				slog.Info("Sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweep(ctx context.Context, workspaces *WorkspaceManager, st store.Store, maxAge time.Duration) {
	removed, err := workspaces.SweepOlderThan(maxAge)
	if err != nil {
		slog.Error("Workspace sweep failed", "error", err)
	} else if removed > 0 {
		slog.Info("Swept stale workspaces", "count", removed)
	}

	if _, err := st.CleanupEmpty(ctx); err != nil {
		slog.Error("Empty room sweep failed", "error", err)
	}
}
