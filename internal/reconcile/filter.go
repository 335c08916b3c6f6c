package reconcile

import (
	"errors"
	"log/slog"
)

// FilterMode describes how a ChatFilter decides.
type FilterMode string

// Filter modes.
const (
	FilterAll   FilterMode = "all"
	FilterAllow FilterMode = "allow"
	FilterDeny  FilterMode = "deny"
)

// ChatFilter gates message reconciliation by chat ID. With neither list set
// every chat passes.
type ChatFilter struct {
	mode FilterMode
	ids  map[int64]struct{}
}

// NewChatFilter builds a filter from an allow-list or a deny-list. Setting
// both is an error.
func NewChatFilter(allow, deny []int64) (*ChatFilter, error) {
	switch {
	case len(allow) > 0 && len(deny) > 0:
		return nil, errors.New("chat filter: allow-list and deny-list are mutually exclusive")
	case len(allow) > 0:
		return &ChatFilter{mode: FilterAllow, ids: toSet(allow)}, nil
	case len(deny) > 0:
		return &ChatFilter{mode: FilterDeny, ids: toSet(deny)}, nil
	default:
		return &ChatFilter{mode: FilterAll}, nil
	}
}

// Allows reports whether messages from chatID may be stored.
func (f *ChatFilter) Allows(chatID int64) bool {
	if f == nil {
		return true
	}
	_, listed := f.ids[chatID]
	switch f.mode {
	case FilterAllow:
		return listed
	case FilterDeny:
		return !listed
	default:
		return true
	}
}

// Mode returns the filter mode.
func (f *ChatFilter) Mode() FilterMode {
	if f == nil {
		return FilterAll
	}
	return f.mode
}

// Len returns the number of listed chat IDs.
func (f *ChatFilter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.ids)
}

// LogValue summarizes the filter for startup logs.
func (f *ChatFilter) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("mode", string(f.Mode())),
		slog.Int("chat_ids", f.Len()),
	)
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
