package usecase

import (
	"context"
	"log/slog"
	"time"
)

// postCommitTimeout bounds all post-commit tasks of one write.
const postCommitTimeout = 10 * time.Second

// postCommitTask is a side effect that runs after a successful write.
type postCommitTask struct {
	name string
	run  func(ctx context.Context) error
}

// runPostCommit runs every task in order. A failing task is logged and never
// affects the others or the caller's result. Tasks keep running if the request
// context is cancelled after the commit.
func runPostCommit(ctx context.Context, userID string, tasks ...postCommitTask) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postCommitTimeout)
	defer cancel()

	for _, t := range tasks {
		if err := t.run(ctx); err != nil {
			slog.Warn("post-commit task failed", "task", t.name, "user_id", userID, "error", err)
			continue
		}
		slog.Debug("post-commit task done", "task", t.name, "user_id", userID)
	}
}
