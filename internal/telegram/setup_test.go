package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/bot/handlers"
)

func TestApplyMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) bot.Middleware {
		return func(next bot.HandlerFunc) bot.HandlerFunc {
			return func(ctx context.Context, b *bot.Bot, update *models.Update) {
				order = append(order, name)
				next(ctx, b, update)
			}
		}
	}
	h := applyMiddleware(func(context.Context, *bot.Bot, *models.Update) {
		order = append(order, "handler")
	}, []bot.Middleware{mw("outer"), mw("inner")})

	h(context.Background(), nil, &models.Update{})
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestTokenPrefix(t *testing.T) {
	assert.Equal(t, "123456:...", tokenPrefix("123456:secret"))
	assert.Equal(t, "...", tokenPrefix("malformed"))
}

func TestNewTelegramBotAndRegister(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := NewTelegramBot("", log)
	require.Error(t, err)

	b, err := NewTelegramBot("123456:secret", log, bot.WithSkipGetMe())
	require.NoError(t, err)

	require.Error(t, RegisterHandlers(nil, log, nil))
	require.NoError(t, RegisterHandlers(b, log, nil))
	require.NoError(t, RegisterHandlers(b, log, map[string]handlers.RegisteredHandler{
		"/start": {
			HandlerType: bot.HandlerTypeMessageText,
			Pattern:     "start",
			Handler:     func(context.Context, *bot.Bot, *models.Update) {},
			MatchType:   bot.MatchTypeCommandStartOnly,
		},
		"/nil": {Pattern: "nil"},
	}))
}
