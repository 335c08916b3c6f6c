// Package auth drives the TDLib login handshake: it answers authorization
// state notifications with the next request and accepts externally triggered
// login, code and logout events.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/edgard/yugram/internal/logger"
	"github.com/edgard/yugram/internal/metrics"
	"github.com/edgard/yugram/internal/tdlib"
)

var (
	// ErrEmptyCode is returned by SubmitCode for a blank code.
	ErrEmptyCode = errors.New("authentication code is empty")

	// ErrUnexpectedUpdate is returned by HandleUpdate for anything other than
	// an authorization state update.
	ErrUnexpectedUpdate = errors.New("not an authorization state update")
)

// Sender delivers requests to TDLib without waiting for the response.
type Sender interface {
	Send(fn tdlib.Function, h tdlib.ResultHandler) error
}

// Credentials are the login secrets. They are never logged.
type Credentials struct {
	PhoneNumber string
	Password    string
}

// LogValue keeps credentials out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("phone_number", logger.MaskPhone(c.PhoneNumber)),
		slog.Bool("password_set", c.Password != ""),
	)
}

// Authorizer is the authorization state machine.
type Authorizer struct {
	sender Sender
	params tdlib.SetTdlibParameters
	creds  Credentials
	logger *slog.Logger

	state atomic.Value // State
}

// New creates an Authorizer that sends params and creds through sender.
func New(sender Sender, params tdlib.SetTdlibParameters, creds Credentials, log *slog.Logger) *Authorizer {
	if log == nil {
		log = slog.Default()
	}
	a := &Authorizer{
		sender: sender,
		params: params,
		creds:  creds,
		logger: log.With("component", "authorizer"),
	}
	a.setState(StateNone)
	return a
}

// State returns the last tracked authorization state.
func (a *Authorizer) State() State {
	return a.state.Load().(State)
}

// HandleUpdate reacts to an updateAuthorizationState notification.
func (a *Authorizer) HandleUpdate(ctx context.Context, update tdlib.Object) error {
	upd, ok := update.(*tdlib.UpdateAuthorizationState)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnexpectedUpdate, update.Type())
	}

	state, known := states[upd.State]
	if !known {
		a.setState(StateUnknown)
		a.logger.WarnContext(ctx, "Unsupported authorization state", "state", upd.State)
		return nil
	}
	a.setState(state)

	switch state {
	case StateWaitParameters:
		a.logger.InfoContext(ctx, "Sending TDLib parameters")
		_ = a.send(ctx, &a.params)
	case StateWaitPhone:
		a.logger.InfoContext(ctx, "Sending phone number", "phone_number", logger.MaskPhone(a.creds.PhoneNumber))
		_ = a.send(ctx, &tdlib.SetAuthenticationPhoneNumber{PhoneNumber: a.creds.PhoneNumber})
	case StateWaitCode:
		a.logger.InfoContext(ctx, "Waiting for authentication code")
	case StateWaitPassword:
		if a.creds.Password == "" {
			a.logger.WarnContext(ctx, "Two-step verification password requested but none is configured")
		}
		a.logger.InfoContext(ctx, "Sending two-step verification password")
		_ = a.send(ctx, &tdlib.CheckAuthenticationPassword{Password: a.creds.Password})
	case StateReady:
		a.logger.InfoContext(ctx, "Authorization complete")
	case StateLoggingOut, StateClosing, StateClosed:
		a.logger.InfoContext(ctx, "Authorization state changed", "state", state)
	}
	return nil
}

// Login restarts the handshake by sending the TDLib parameters again,
// regardless of the tracked state.
func (a *Authorizer) Login(ctx context.Context) error {
	a.logger.InfoContext(ctx, "Login requested", "state", a.State())
	return a.send(ctx, &a.params)
}

// SubmitCode sends the one-time code, regardless of the tracked state.
func (a *Authorizer) SubmitCode(ctx context.Context, code string) error {
	if code == "" {
		return ErrEmptyCode
	}
	a.logger.InfoContext(ctx, "Authentication code received", "state", a.State())
	return a.send(ctx, &tdlib.CheckAuthenticationCode{Code: code})
}

// Logout closes the current session.
func (a *Authorizer) Logout(ctx context.Context) error {
	a.logger.InfoContext(ctx, "Logout requested", "state", a.State())
	return a.send(ctx, &tdlib.LogOut{})
}

// send issues fn and logs transport failures. Failures are returned to the
// caller but never retried or turned into state changes.
func (a *Authorizer) send(ctx context.Context, fn tdlib.Function) error {
	request := fn.Type()
	if err := a.sender.Send(fn, a.responseHandler(request)); err != nil {
		metrics.AuthRequests.WithLabelValues(request, "send_failed").Inc()
		a.logger.ErrorContext(ctx, "Failed to send authorization request", "request", request, "error", err)
		return fmt.Errorf("send %s: %w", request, err)
	}
	return nil
}

// responseHandler logs the outcome of request. The request body is not
// logged because it may carry credentials.
func (a *Authorizer) responseHandler(request string) tdlib.ResultHandler {
	return func(result tdlib.Object) {
		switch r := result.(type) {
		case *tdlib.Ok:
			metrics.AuthRequests.WithLabelValues(request, "ok").Inc()
			a.logger.Info("Authorization request accepted", "request", request)
		case *tdlib.Error:
			metrics.AuthRequests.WithLabelValues(request, "error").Inc()
			a.logger.Error("Authorization request rejected",
				"request", request, "code", r.Code, "message", r.Message, "state", a.State())
		default:
			metrics.AuthRequests.WithLabelValues(request, "unexpected").Inc()
			a.logger.Warn("Unexpected response to authorization request", "request", request, "type", result.Type())
		}
	}
}

func (a *Authorizer) setState(s State) {
	a.state.Store(s)
	for _, known := range AllStates {
		v := 0.0
		if known == s {
			v = 1
		}
		metrics.AuthorizationState.WithLabelValues(string(known)).Set(v)
	}
}
