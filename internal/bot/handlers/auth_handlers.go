package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const maxCodeLength = 64

// NewLoginHandler returns a handler for /login.
func NewLoginHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "login")
		chatID := update.Message.Chat.ID
		if err := deps.Auth.Login(ctx); err != nil {
			log.ErrorContext(ctx, "Login request failed", "error", err)
			reply(ctx, b, log, chatID, "Login request could not be sent.")
			return
		}
		reply(ctx, b, log, chatID, "Login request accepted. Send the code with /otp <code>.")
	}
}

// NewOTPHandler returns a handler for /otp <code>.
func NewOTPHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "otp")
		chatID := update.Message.Chat.ID

		code := parseCommandArg(update.Message.Text)
		switch {
		case code == "":
			reply(ctx, b, log, chatID, "Usage: /otp <code>")
			return
		case len(code) > maxCodeLength:
			reply(ctx, b, log, chatID, "OTP code is too long.")
			return
		}

		deleteCodeMessage(ctx, b, log, update.Message)

		if err := deps.Auth.SubmitCode(ctx, code); err != nil {
			log.ErrorContext(ctx, "OTP submission failed", "error", err)
			reply(ctx, b, log, chatID, "OTP code could not be sent.")
			return
		}
		reply(ctx, b, log, chatID, "OTP code accepted.")
	}
}

// NewLogoutHandler returns a handler for /logout.
func NewLogoutHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "logout")
		chatID := update.Message.Chat.ID
		if err := deps.Auth.Logout(ctx); err != nil {
			log.ErrorContext(ctx, "Logout request failed", "error", err)
			reply(ctx, b, log, chatID, "Logout request could not be sent.")
			return
		}
		reply(ctx, b, log, chatID, "Logout request accepted.")
	}
}

// NewStateHandler returns a handler for /state.
func NewStateHandler(deps HandlerDeps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", "state")
		reply(ctx, b, log, update.Message.Chat.ID, fmt.Sprintf("Authorization state: %s", deps.Auth.State()))
	}
}

// parseCommandArg returns the text after the command, trimmed.
func parseCommandArg(text string) string {
	_, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(arg)
}

// deleteCodeMessage removes the message carrying the code from the chat
// history. Failure is logged and otherwise ignored.
func deleteCodeMessage(ctx context.Context, b *bot.Bot, log *slog.Logger, msg *models.Message) {
	_, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: msg.Chat.ID, MessageID: msg.ID})
	if err != nil {
		log.WarnContext(ctx, "Failed to delete OTP message", "error", err, "chat_id", msg.Chat.ID)
	}
}
