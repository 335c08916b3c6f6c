// Package reconcile turns chat, user and message updates into idempotent
// upserts against the entity store.
package reconcile

import (
	"context"
	"fmt"
	"hash/maphash"
	"log/slog"
	"sync"

	"github.com/edgard/yugram/internal/database"
	"github.com/edgard/yugram/internal/dispatch"
	"github.com/edgard/yugram/internal/metrics"
	"github.com/edgard/yugram/internal/tdlib"
)

// Store is the keyed find/save contract the engine needs. Find methods return
// nil, nil when the entity does not exist.
type Store interface {
	FindChat(ctx context.Context, id int64) (*database.Chat, error)
	SaveChat(ctx context.Context, chat *database.Chat) error
	FindUser(ctx context.Context, id int64) (*database.User, error)
	SaveUser(ctx context.Context, user *database.User) error
	FindMessage(ctx context.Context, id int64) (*database.Message, error)
	SaveMessage(ctx context.Context, message *database.Message) error
}

// Outcome is the result of one reconcile.
type Outcome string

// Outcomes.
const (
	Created Outcome = metrics.OutcomeCreated
	Merged  Outcome = metrics.OutcomeMerged
	Skipped Outcome = metrics.OutcomeSkipped
)

type entity string

const (
	entityChat    entity = "chat"
	entityUser    entity = "user"
	entityMessage entity = "message"
)

const lockStripes = 64

// Engine reconciles entities against a Store. The find-then-save sequence is
// atomic per entity key within one Engine.
type Engine struct {
	store  Store
	filter *ChatFilter
	logger *slog.Logger

	seed  maphash.Seed
	locks [lockStripes]sync.Mutex
}

// NewEngine creates an engine. A nil filter lets every message through.
func NewEngine(store Store, filter *ChatFilter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		filter: filter,
		logger: logger.With("component", "reconcile"),
		seed:   maphash.MakeSeed(),
	}
}

// ReconcileChat creates or merges a chat.
func (e *Engine) ReconcileChat(ctx context.Context, c tdlib.Chat) (Outcome, error) {
	defer e.lock(entityChat, c.ID)()

	existing, err := e.store.FindChat(ctx, c.ID)
	if err != nil {
		return e.fail(entityChat, err)
	}
	if existing == nil {
		if err := e.store.SaveChat(ctx, NewChat(c)); err != nil {
			return e.fail(entityChat, err)
		}
		return e.done(ctx, entityChat, c.ID, Created)
	}

	changed := MergeChat(existing, c)
	if err := e.store.SaveChat(ctx, existing); err != nil {
		return e.fail(entityChat, err)
	}
	e.logger.DebugContext(ctx, "Chat merged", "chat_id", c.ID, "changed", changed)
	return e.done(ctx, entityChat, c.ID, Merged)
}

// ReconcileUser creates or merges a user.
func (e *Engine) ReconcileUser(ctx context.Context, u tdlib.User) (Outcome, error) {
	defer e.lock(entityUser, u.ID)()

	existing, err := e.store.FindUser(ctx, u.ID)
	if err != nil {
		return e.fail(entityUser, err)
	}
	if existing == nil {
		if err := e.store.SaveUser(ctx, NewUser(u)); err != nil {
			return e.fail(entityUser, err)
		}
		return e.done(ctx, entityUser, u.ID, Created)
	}

	changed := MergeUser(existing, u)
	if err := e.store.SaveUser(ctx, existing); err != nil {
		return e.fail(entityUser, err)
	}
	e.logger.DebugContext(ctx, "User merged", "user_id", u.ID, "changed", changed)
	return e.done(ctx, entityUser, u.ID, Merged)
}

// ReconcileMessage creates a message with non-blank text or refreshes the
// text of a stored one. Messages from filtered chats never reach the store.
func (e *Engine) ReconcileMessage(ctx context.Context, m tdlib.Message) (Outcome, error) {
	if !e.filter.Allows(m.ChatID) {
		e.logger.DebugContext(ctx, "Message filtered by chat", "message_id", m.ID, "chat_id", m.ChatID)
		return e.done(ctx, entityMessage, m.ID, Skipped)
	}

	defer e.lock(entityMessage, m.ID)()

	existing, err := e.store.FindMessage(ctx, m.ID)
	if err != nil {
		return e.fail(entityMessage, err)
	}
	text := MessageText(m.Content)

	if existing == nil {
		if isBlank(text) {
			e.logger.DebugContext(ctx, "Message has no text, not storing", "message_id", m.ID, "content", contentType(m.Content))
			return e.done(ctx, entityMessage, m.ID, Skipped)
		}
		senderID, err := SenderID(m.SenderID)
		if err != nil {
			return e.fail(entityMessage, fmt.Errorf("message %d: %w", m.ID, err))
		}
		if err := e.store.SaveMessage(ctx, NewMessage(m, senderID, text)); err != nil {
			return e.fail(entityMessage, err)
		}
		return e.done(ctx, entityMessage, m.ID, Created)
	}

	changed := MergeMessage(existing, text)
	if err := e.store.SaveMessage(ctx, existing); err != nil {
		return e.fail(entityMessage, err)
	}
	e.logger.DebugContext(ctx, "Message merged", "message_id", m.ID, "changed", changed)
	return e.done(ctx, entityMessage, m.ID, Merged)
}

// Routes returns the dispatcher handlers for the entity updates.
func (e *Engine) Routes() map[string]dispatch.HandlerFunc {
	return map[string]dispatch.HandlerFunc{
		tdlib.TypeUpdateNewChat: func(ctx context.Context, update tdlib.Object) error {
			upd, ok := update.(*tdlib.UpdateNewChat)
			if !ok {
				return fmt.Errorf("%w: expected %s, got %s", ErrDecode, tdlib.TypeUpdateNewChat, update.Type())
			}
			_, err := e.ReconcileChat(ctx, upd.Chat)
			return err
		},
		tdlib.TypeUpdateUser: func(ctx context.Context, update tdlib.Object) error {
			upd, ok := update.(*tdlib.UpdateUser)
			if !ok {
				return fmt.Errorf("%w: expected %s, got %s", ErrDecode, tdlib.TypeUpdateUser, update.Type())
			}
			_, err := e.ReconcileUser(ctx, upd.User)
			return err
		},
		tdlib.TypeUpdateNewMessage: func(ctx context.Context, update tdlib.Object) error {
			upd, ok := update.(*tdlib.UpdateNewMessage)
			if !ok {
				return fmt.Errorf("%w: expected %s, got %s", ErrDecode, tdlib.TypeUpdateNewMessage, update.Type())
			}
			_, err := e.ReconcileMessage(ctx, upd.Message)
			return err
		},
	}
}

type lockKey struct {
	kind entity
	id   int64
}

// lock acquires the stripe for the entity key and returns its release.
func (e *Engine) lock(kind entity, id int64) func() {
	mu := &e.locks[maphash.Comparable(e.seed, lockKey{kind, id})%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (e *Engine) done(ctx context.Context, kind entity, id int64, outcome Outcome) (Outcome, error) {
	metrics.Reconciled.WithLabelValues(string(kind), string(outcome)).Inc()
	if outcome == Created {
		e.logger.DebugContext(ctx, "Entity created", "entity", kind, "id", id)
	}
	return outcome, nil
}

func (e *Engine) fail(kind entity, err error) (Outcome, error) {
	metrics.Reconciled.WithLabelValues(string(kind), metrics.OutcomeFailed).Inc()
	return "", fmt.Errorf("reconcile %s: %w", kind, err)
}

func contentType(c tdlib.MessageContent) string {
	if c == nil {
		return ""
	}
	return c.Type()
}
