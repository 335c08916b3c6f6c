// Package httpapi exposes the control HTTP surface: authorization events,
// health probes and Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgard/yugram/internal/auth"
)

const (
	maxCodeBytes             = 64
	defaultMiddlewareTimeout = 30 * time.Second
)

// Authorizer receives the externally triggered authorization events.
type Authorizer interface {
	Login(ctx context.Context) error
	SubmitCode(ctx context.Context, code string) error
	Logout(ctx context.Context) error
	State() auth.State
}

// Readiness reports whether updates are being dispatched.
type Readiness interface {
	Ready() bool
}

// Pinger checks the store connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the control router.
func NewRouter(a Authorizer, ready Readiness, store Pinger, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultMiddlewareTimeout))
	r.Use(requestLogger(logger))

	r.Get("/healthz", handleHealth(store, logger))
	r.Get("/readyz", handleReady(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", handleLogin(a, logger))
		r.Post("/otp", handleOTP(a, logger))
		r.Post("/logout", handleLogout(a, logger))
		r.Get("/state", handleState(a))
	})

	return r
}

func handleLogin(a Authorizer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.Login(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "Login request failed", "error", err)
			http.Error(w, "login request could not be sent", http.StatusServiceUnavailable)
			return
		}
		writeText(w, http.StatusAccepted, "Login request accepted. POST OTP code to '/auth/otp'")
	}
}

func handleOTP(a Authorizer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCodeBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "OTP code is too long", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "could not read OTP code", http.StatusBadRequest)
			return
		}

		code := strings.TrimSpace(string(body))
		if code == "" {
			http.Error(w, "OTP code is required", http.StatusBadRequest)
			return
		}
		if err := a.SubmitCode(r.Context(), code); err != nil {
			logger.ErrorContext(r.Context(), "OTP submission failed", "error", err)
			http.Error(w, "OTP code could not be sent", http.StatusServiceUnavailable)
			return
		}
		writeText(w, http.StatusAccepted, "OTP code accepted")
	}
}

func handleLogout(a Authorizer, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.Logout(r.Context()); err != nil {
			logger.ErrorContext(r.Context(), "Logout request failed", "error", err)
			http.Error(w, "logout request could not be sent", http.StatusServiceUnavailable)
			return
		}
		writeText(w, http.StatusAccepted, "Logout request accepted")
	}
}

func handleState(a Authorizer) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"state": string(a.State())})
	}
}

func handleHealth(store Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				logger.WarnContext(r.Context(), "Health check failed", "error", err)
				writeText(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE")
				return
			}
		}
		writeText(w, http.StatusOK, "OK")
	}
}

func handleReady(ready Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if ready == nil || !ready.Ready() {
			writeText(w, http.StatusServiceUnavailable, "NOT_READY")
			return
		}
		writeText(w, http.StatusOK, "READY")
	}
}

// requestLogger writes one access log line per request. Bodies are never
// logged since they may carry an OTP code.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
