// Package dispatch buffers TDLib updates until the application is ready and
// then routes each one to the consumer registered for its tag.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/edgard/yugram/internal/metrics"
	"github.com/edgard/yugram/internal/tdlib"
)

// ErrAlreadyReady is returned by Route after DeclareReady.
var ErrAlreadyReady = errors.New("dispatcher is already ready")

// HandlerFunc consumes one update.
type HandlerFunc func(ctx context.Context, update tdlib.Object) error

// Dispatcher holds updates in arrival order until DeclareReady, then forwards
// each update synchronously to at most one handler. Handlers must not call
// Submit.
type Dispatcher struct {
	logger *slog.Logger

	// mu guards the readiness check together with the enqueue-or-dispatch
	// step, so no update can overtake the drain.
	mu      sync.Mutex
	ready   bool
	pending []tdlib.Object
	routes  map[string]HandlerFunc
}

// New creates a dispatcher that is not yet ready.
func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger:  logger.With("component", "dispatcher"),
		pending: make([]tdlib.Object, 0, 64),
		routes:  make(map[string]HandlerFunc),
	}
}

// Route registers h for updates tagged tag. Routes must be registered before
// DeclareReady; registering the same tag twice replaces the handler.
func (d *Dispatcher) Route(tag string, h HandlerFunc) error {
	if h == nil {
		return fmt.Errorf("route %s: nil handler", tag)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ready {
		return fmt.Errorf("route %s: %w", tag, ErrAlreadyReady)
	}
	d.routes[tag] = h
	return nil
}

// Submit accepts an update from the channel. Before readiness the update is
// queued; afterwards it is dispatched before Submit returns.
func (d *Dispatcher) Submit(ctx context.Context, update tdlib.Object) {
	if update == nil {
		return
	}
	metrics.UpdatesReceived.WithLabelValues(update.Type()).Inc()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready {
		d.pending = append(d.pending, update)
		metrics.PendingUpdates.Set(float64(len(d.pending)))
		d.logger.DebugContext(ctx, "Buffered update until ready", "tag", update.Type(), "pending", len(d.pending))
		return
	}
	d.dispatch(ctx, update)
}

// DeclareReady marks the dispatcher ready and drains the buffered updates in
// arrival order. Calls after the first are no-ops.
func (d *Dispatcher) DeclareReady(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ready {
		d.logger.DebugContext(ctx, "Dispatcher already ready, ignoring")
		return
	}
	d.ready = true

	queued := d.pending
	d.pending = nil
	metrics.PendingUpdates.Set(0)
	d.logger.InfoContext(ctx, "Dispatcher ready, draining buffered updates", "count", len(queued), "routes", len(d.routes))

	for _, update := range queued {
		d.dispatch(ctx, update)
	}
}

// Ready reports whether DeclareReady has been called.
func (d *Dispatcher) Ready() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready
}

// Pending returns the number of buffered updates.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// dispatch must be called with mu held.
func (d *Dispatcher) dispatch(ctx context.Context, update tdlib.Object) {
	tag := update.Type()
	h, ok := d.routes[tag]
	if !ok {
		metrics.UpdatesDropped.WithLabelValues(tag).Inc()
		d.logger.DebugContext(ctx, "Skipping update with no consumer", "tag", tag)
		return
	}
	if err := h(ctx, update); err != nil {
		metrics.UpdateErrors.WithLabelValues(tag).Inc()
		d.logger.ErrorContext(ctx, "Update consumer failed", "tag", tag, "error", err)
	}
}
