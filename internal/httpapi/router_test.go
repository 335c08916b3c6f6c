package httpapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/auth"
	"github.com/edgard/yugram/internal/config"
	"github.com/edgard/yugram/internal/httpapi"
)

type fakeAuthorizer struct {
	mu     sync.Mutex
	events []string
	codes  []string
	err    error
}

func (f *fakeAuthorizer) record(event string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakeAuthorizer) Login(context.Context) error  { return f.record("login") }
func (f *fakeAuthorizer) Logout(context.Context) error { return f.record("logout") }
func (f *fakeAuthorizer) SubmitCode(_ context.Context, code string) error {
	f.mu.Lock()
	f.codes = append(f.codes, code)
	f.mu.Unlock()
	return f.record("otp")
}
func (f *fakeAuthorizer) State() auth.State { return auth.StateWaitCode }

type readiness bool

func (r readiness) Ready() bool { return bool(r) }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRoutes(t *testing.T) {
	t.Parallel()

	a := &fakeAuthorizer{}
	h := httpapi.NewRouter(a, readiness(true), pinger{}, quietLogger())

	rec := do(t, h, http.MethodPost, "/auth/login", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Login request accepted. POST OTP code to '/auth/otp'", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/auth/otp", " 123456\n")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "OTP code accepted", rec.Body.String())

	rec = do(t, h, http.MethodPost, "/auth/otp", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/otp", strings.Repeat("1", 100))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Logout request accepted", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/auth/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"wait_code"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/auth/login", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	assert.Equal(t, []string{"login", "otp", "logout"}, a.events)
	assert.Equal(t, []string{"123456"}, a.codes)
}

func TestAuthRoutesSendFailure(t *testing.T) {
	t.Parallel()

	a := &fakeAuthorizer{err: errors.New("client closed")}
	h := httpapi.NewRouter(a, readiness(true), nil, quietLogger())

	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/auth/login", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/auth/otp", "1").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodPost, "/auth/logout", "").Code)
}

func TestProbes(t *testing.T) {
	t.Parallel()

	h := httpapi.NewRouter(&fakeAuthorizer{}, readiness(false), pinger{err: errors.New("db locked")}, quietLogger())
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, h, http.MethodGet, "/readyz", "").Code)

	h = httpapi.NewRouter(&fakeAuthorizer{}, readiness(true), pinger{}, quietLogger())
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, "READY", do(t, h, http.MethodGet, "/readyz", "").Body.String())

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServeGracefulShutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h := httpapi.NewRouter(&fakeAuthorizer{}, readiness(true), nil, quietLogger())
	done := make(chan error, 1)
	go func() {
		done <- httpapi.Serve(ctx, ln, h, quietLogger(), config.HTTPConfig{ShutdownTimeout: time.Second})
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
