package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/database"
	"github.com/edgard/yugram/internal/metrics"
)

// stubStore implements the parts of database.Store the tasks use.
type stubStore struct {
	database.Store
	stats    database.Stats
	err      error
	vacuumed int
}

func (s *stubStore) Stats(context.Context) (database.Stats, error) { return s.stats, s.err }

func (s *stubStore) RunSQLMaintenance(context.Context) error {
	s.vacuumed++
	return s.err
}

func testDeps(store database.Store) TaskDeps {
	return TaskDeps{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Store: store}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	tasks := RegisterAllTasks(testDeps(&stubStore{}))
	assert.Contains(t, tasks, SQLMaintenance)
	assert.Contains(t, tasks, StoreStats)
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	require.NoError(t, newSQLMaintenanceTask(testDeps(store))(context.Background()))
	assert.Equal(t, 1, store.vacuumed)

	store.err = errors.New("database is locked")
	require.ErrorIs(t, newSQLMaintenanceTask(testDeps(store))(context.Background()), store.err)
}

func TestStoreStatsTask(t *testing.T) {
	t.Parallel()

	store := &stubStore{stats: database.Stats{Chats: 3, Users: 5, Messages: 8}}
	require.NoError(t, newStoreStatsTask(testDeps(store))(context.Background()))
	assert.InDelta(t, 8, testutil.ToFloat64(metrics.StoreRows.WithLabelValues("messages")), 0)

	store.err = errors.New("closed")
	require.Error(t, newStoreStatsTask(testDeps(store))(context.Background()))
}
