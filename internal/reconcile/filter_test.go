package reconcile_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/reconcile"
)

func TestChatFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allow   []int64
		deny    []int64
		mode    reconcile.FilterMode
		allowed map[int64]bool
	}{
		{
			name:    "no lists",
			mode:    reconcile.FilterAll,
			allowed: map[int64]bool{1: true, -100: true},
		},
		{
			name:    "allow list",
			allow:   []int64{1, 2},
			mode:    reconcile.FilterAllow,
			allowed: map[int64]bool{1: true, 2: true, 3: false},
		},
		{
			name:    "deny list",
			deny:    []int64{-100, 999},
			mode:    reconcile.FilterDeny,
			allowed: map[int64]bool{-100: false, 999: false, 456: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f, err := reconcile.NewChatFilter(tt.allow, tt.deny)
			require.NoError(t, err)
			assert.Equal(t, tt.mode, f.Mode())
			assert.Equal(t, len(tt.allow)+len(tt.deny), f.Len())
			for id, want := range tt.allowed {
				assert.Equal(t, want, f.Allows(id), "chat %d", id)
			}
		})
	}
}

func TestChatFilterRejectsBothLists(t *testing.T) {
	t.Parallel()

	_, err := reconcile.NewChatFilter([]int64{1}, []int64{2})
	require.Error(t, err)
}

func TestChatFilterNil(t *testing.T) {
	t.Parallel()

	var f *reconcile.ChatFilter
	assert.True(t, f.Allows(42))
	assert.Equal(t, reconcile.FilterAll, f.Mode())
	assert.Zero(t, f.Len())
}

func TestChatFilterLogValue(t *testing.T) {
	t.Parallel()

	f, err := reconcile.NewChatFilter(nil, []int64{-1, -2, -3})
	require.NoError(t, err)

	var buf bytes.Buffer
	slog.New(slog.NewTextHandler(&buf, nil)).Info("Message filter configured", "filter", f)

	assert.Contains(t, buf.String(), "filter.mode=deny")
	assert.Contains(t, buf.String(), "filter.chat_ids=3")
}
