package tasks

import (
	"context"
	"fmt"

	"github.com/edgard/yugram/internal/metrics"
)

// newStoreStatsTask creates the task that logs row counts and exports them as gauges.
func newStoreStatsTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", StoreStats)

	return func(ctx context.Context) error {
		stats, err := deps.Store.Stats(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to collect store statistics", "error", err)
			return fmt.Errorf("store stats failed: %w", err)
		}

		metrics.StoreRows.WithLabelValues("chats").Set(float64(stats.Chats))
		metrics.StoreRows.WithLabelValues("users").Set(float64(stats.Users))
		metrics.StoreRows.WithLabelValues("messages").Set(float64(stats.Messages))

		log.InfoContext(ctx, "Store statistics", "chats", stats.Chats, "users", stats.Users, "messages", stats.Messages)
		return nil
	}
}
