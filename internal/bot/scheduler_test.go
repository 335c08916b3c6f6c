package bot

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/bot/tasks"
	"github.com/edgard/yugram/internal/config"
)

func TestSchedulerStartsEnabledTasks(t *testing.T) {
	t.Parallel()

	noop := func(context.Context) error { return nil }
	cfg := config.SchedulerConfig{Tasks: map[string]config.TaskConfig{
		"enabled":   {Enabled: true, Schedule: "0 0 3 * * *"},
		"disabled":  {Enabled: false, Schedule: "0 0 3 * * *"},
		"unknown":   {Enabled: true, Schedule: "0 0 3 * * *"},
		"no_sched":  {Enabled: true},
		"bad_sched": {Enabled: true, Schedule: "not a cron"},
	}}
	taskMap := map[string]tasks.ScheduledTaskFunc{
		"enabled":   noop,
		"disabled":  noop,
		"no_sched":  noop,
		"bad_sched": noop,
	}

	s, err := NewScheduler(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, taskMap)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.Error(t, s.Start())

	jobs := s.Jobs()
	sort.Strings(jobs)
	assert.Equal(t, []string{"enabled"}, jobs)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}
