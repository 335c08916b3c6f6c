package reconcile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/database"
	"github.com/edgard/yugram/internal/reconcile"
	"github.com/edgard/yugram/internal/tdlib"
)

func newEngine(t *testing.T, store reconcile.Store, filter *reconcile.ChatFilter) *reconcile.Engine {
	t.Helper()
	return reconcile.NewEngine(store, filter, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func textMessage(id, chatID int64, sender tdlib.MessageSender, text string) tdlib.Message {
	return tdlib.Message{
		ID:       id,
		ChatID:   chatID,
		SenderID: sender,
		Date:     1700000000,
		Content:  &tdlib.MessageText{Text: tdlib.FormattedText{Text: text}},
	}
}

func TestReconcileChat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	e := newEngine(t, store, nil)

	out, err := e.ReconcileChat(ctx, tdlib.Chat{ID: 5, Type: &tdlib.ChatTypePrivate{UserID: 5}, Title: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Created, out)
	assert.Equal(t, database.ChatKindPrivate, store.chats[5].Kind)

	// An unrecognized kind and an empty title leave the stored values alone.
	out, err = e.ReconcileChat(ctx, tdlib.Chat{ID: 5, Type: &tdlib.ChatTypeOther{Tag: "chatTypeFuture"}})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Merged, out)
	assert.Equal(t, database.ChatKindPrivate, store.chats[5].Kind)
	assert.Equal(t, "Ann", store.chats[5].Title.String)

	_, err = e.ReconcileChat(ctx, tdlib.Chat{ID: 5, Type: &tdlib.ChatTypeSecret{}, Title: "Ann B"})
	require.NoError(t, err)
	assert.Equal(t, database.ChatKindSecret, store.chats[5].Kind)
	assert.Equal(t, "Ann B", store.chats[5].Title.String)
}

func TestReconcileChatUnknownKindOnCreate(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	e := newEngine(t, store, nil)

	_, err := e.ReconcileChat(context.Background(), tdlib.Chat{ID: 8, Type: &tdlib.ChatTypeOther{Tag: "chatTypeFuture"}})
	require.NoError(t, err)
	assert.Equal(t, database.ChatKindUnknown, store.chats[8].Kind)
	assert.False(t, store.chats[8].Title.Valid)
}

func TestReconcileUserMerge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	e := newEngine(t, store, nil)

	_, err := e.ReconcileUser(ctx, tdlib.User{
		ID:          42,
		FirstName:   "Ann",
		Usernames:   &tdlib.Usernames{ActiveUsernames: []string{"a"}},
		PhoneNumber: "15550100",
		IsPremium:   true,
		Type:        &tdlib.UserTypeRegular{},
	})
	require.NoError(t, err)
	assert.Equal(t, "a", store.users[42].Username.String)

	out, err := e.ReconcileUser(ctx, tdlib.User{
		ID:        42,
		Usernames: &tdlib.Usernames{ActiveUsernames: []string{"b"}},
		IsContact: true,
		Type:      &tdlib.UserTypeOther{Tag: "userTypeFuture"},
	})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Merged, out)

	got := store.users[42]
	assert.Equal(t, "b", got.Username.String)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "15550100", got.PhoneNumber.String)
	// Flags always follow the latest observation.
	assert.True(t, got.IsContact)
	assert.False(t, got.IsPremium)
	assert.Equal(t, database.UserKindRegular, got.Kind)

	_, err = e.ReconcileUser(ctx, tdlib.User{ID: 42, Type: &tdlib.UserTypeDeleted{}})
	require.NoError(t, err)
	assert.Equal(t, database.UserKindDeleted, store.users[42].Kind)
	assert.Equal(t, "b", store.users[42].Username.String)
}

func TestReconcileMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("chat sender", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		e := newEngine(t, store, nil)

		out, err := e.ReconcileMessage(ctx, textMessage(7, -100123, &tdlib.MessageSenderChat{ChatID: -100123}, "hello"))
		require.NoError(t, err)
		assert.Equal(t, reconcile.Created, out)
		assert.Equal(t, int64(-100123), store.messages[7].SenderID)
		assert.Equal(t, "hello", store.messages[7].Text.String)
		assert.Equal(t, int32(1700000000), store.messages[7].Timestamp)
	})

	t.Run("photo without caption is not stored", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		e := newEngine(t, store, nil)

		msg := tdlib.Message{ID: 1, ChatID: 2, SenderID: &tdlib.MessageSenderUser{UserID: 3}, Content: &tdlib.MessagePhoto{}}
		out, err := e.ReconcileMessage(ctx, msg)
		require.NoError(t, err)
		assert.Equal(t, reconcile.Skipped, out)
		_, saves := store.calls()
		assert.Zero(t, saves)
		assert.Empty(t, store.messages)
	})

	t.Run("refresh keeps immutable fields", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		e := newEngine(t, store, nil)

		_, err := e.ReconcileMessage(ctx, textMessage(9, 1, &tdlib.MessageSenderUser{UserID: 3}, "first"))
		require.NoError(t, err)

		edited := textMessage(9, 77, &tdlib.MessageSenderUser{UserID: 99}, "second")
		edited.Date = 1
		out, err := e.ReconcileMessage(ctx, edited)
		require.NoError(t, err)
		assert.Equal(t, reconcile.Merged, out)
		got := store.messages[9]
		assert.Equal(t, "second", got.Text.String)
		assert.Equal(t, int64(1), got.ChatID)
		assert.Equal(t, int64(3), got.SenderID)
		assert.Equal(t, int32(1700000000), got.Timestamp)

		// Blank text never erases stored text.
		_, err = e.ReconcileMessage(ctx, textMessage(9, 1, &tdlib.MessageSenderUser{UserID: 3}, "  "))
		require.NoError(t, err)
		assert.Equal(t, "second", store.messages[9].Text.String)
	})

	t.Run("unknown sender", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		e := newEngine(t, store, nil)

		_, err := e.ReconcileMessage(ctx, textMessage(4, 1, &tdlib.MessageSenderOther{Tag: "messageSenderBusiness"}, "hi"))
		require.ErrorIs(t, err, reconcile.ErrDecode)
		assert.Empty(t, store.messages)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		store := newMemStore()
		store.err = errors.New("disk full")
		e := newEngine(t, store, nil)

		_, err := e.ReconcileMessage(ctx, textMessage(4, 1, &tdlib.MessageSenderUser{UserID: 1}, "hi"))
		require.ErrorIs(t, err, store.err)
	})
}

func TestReconcileMessageFilter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	filter, err := reconcile.NewChatFilter(nil, []int64{999})
	require.NoError(t, err)
	store := newMemStore()
	e := newEngine(t, store, filter)

	out, err := e.ReconcileMessage(ctx, textMessage(1, 999, &tdlib.MessageSenderUser{UserID: 1}, "secret"))
	require.NoError(t, err)
	assert.Equal(t, reconcile.Skipped, out)
	finds, saves := store.calls()
	assert.Zero(t, finds)
	assert.Zero(t, saves)

	out, err = e.ReconcileMessage(ctx, textMessage(2, 456, &tdlib.MessageSenderUser{UserID: 1}, "public"))
	require.NoError(t, err)
	assert.Equal(t, reconcile.Created, out)
	finds, saves = store.calls()
	assert.Equal(t, 1, finds)
	assert.Equal(t, 1, saves)
}

func TestEngineRoutes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	e := newEngine(t, store, nil)
	routes := e.Routes()

	require.Len(t, routes, 3)
	require.NoError(t, routes[tdlib.TypeUpdateNewChat](ctx, &tdlib.UpdateNewChat{Chat: tdlib.Chat{ID: 1}}))
	require.NoError(t, routes[tdlib.TypeUpdateUser](ctx, &tdlib.UpdateUser{User: tdlib.User{ID: 2}}))
	require.NoError(t, routes[tdlib.TypeUpdateNewMessage](ctx, &tdlib.UpdateNewMessage{Message: textMessage(3, 1, &tdlib.MessageSenderUser{UserID: 2}, "x")}))
	require.ErrorIs(t, routes[tdlib.TypeUpdateUser](ctx, &tdlib.Ok{}), reconcile.ErrDecode)

	assert.Len(t, store.chats, 1)
	assert.Len(t, store.users, 1)
	assert.Len(t, store.messages, 1)
}

func TestEngineConcurrentSameKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	e := newEngine(t, store, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.ReconcileUser(ctx, tdlib.User{ID: 1, IsContact: true})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Len(t, store.users, 1)
	assert.True(t, store.users[1].IsContact)
}
