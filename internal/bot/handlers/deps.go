package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/yugram/internal/auth"
	"github.com/edgard/yugram/internal/database"
)

// Authorizer receives the authorization events triggered from chat commands.
type Authorizer interface {
	Login(ctx context.Context) error
	SubmitCode(ctx context.Context, code string) error
	Logout(ctx context.Context) error
	State() auth.State
}

// HandlerDeps provides dependencies for the control bot command handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	AdminID int64
	Auth    Authorizer
	Store   database.Store
}
