// Package tasks defines the scheduled background tasks and their
// registry. Task names here match the keys under scheduler.tasks in the
// configuration.
package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/skinside/skinside/internal/database"
)

// TaskFunc is the signature for all scheduled tasks. The context comes
// from the scheduler and must be respected for cancellation.
type TaskFunc func(ctx context.Context) error

// Deps carries the dependencies tasks may need.
type Deps struct {
	Store  database.Store
	Logger *slog.Logger
}

// Register builds the task registry. Keys match the config's
// scheduler.tasks section.
func Register(deps Deps) map[string]TaskFunc {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	registry := map[string]TaskFunc{
		"sql_maintenance": newSQLMaintenanceTask(deps),
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(registry))
	return registry
}

// newSQLMaintenanceTask creates the periodic database maintenance task.
func newSQLMaintenanceTask(deps Deps) TaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled SQL maintenance task")
		startTime := time.Now()

		err := deps.Store.RunSQLMaintenance(ctx)
		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", duration)
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance task completed", "duration", duration)
		return nil
	}
}
