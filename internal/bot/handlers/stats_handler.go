package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStatsHandler returns a handler for /stats, which reports stored entity counts.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "stats")
		chatID := update.Message.Chat.ID

		stats, err := deps.Store.Stats(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to read store stats", "error", err)
			reply(ctx, b, log, chatID, "Could not read store stats.")
			return
		}
		reply(ctx, b, log, chatID, fmt.Sprintf("Chats: %d\nUsers: %d\nMessages: %d", stats.Chats, stats.Users, stats.Messages))
	}
}
