// Package tasks implements the scheduled maintenance tasks of the bridge.
package tasks

import (
	"log/slog"

	"github.com/edgard/yugram/internal/database"
)

// TaskDeps contains the dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
}
