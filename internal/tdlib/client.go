package tdlib

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/yugram/internal/metrics"
)

// ErrClosed is returned by Send once the client has stopped, and by Run when
// the remote side closes the stream.
var ErrClosed = errors.New("tdlib: client closed")

// ErrQueueFull is returned by Send when the outbound queue is saturated.
var ErrQueueFull = errors.New("tdlib: outbound queue full")

const (
	outboundQueueSize = 256
	maxObjectSize     = 16 << 20
)

// ResultHandler receives the response to a single request.
type ResultHandler func(Object)

// UpdateHandler receives every object that is not a response to a pending request.
type UpdateHandler func(ctx context.Context, update Object)

// Client exchanges newline-delimited TDLib JSON objects over a stream. Objects
// are delivered from a single goroutine, so at most one handler runs at a time.
type Client struct {
	r        io.Reader
	w        io.Writer
	onUpdate UpdateHandler
	logger   *slog.Logger

	out      chan []byte
	readDone chan struct{}

	mu      sync.Mutex
	pending map[string]ResultHandler
	closed  bool
}

// NewClient creates a client reading objects from r and writing requests to w.
func NewClient(r io.Reader, w io.Writer, onUpdate UpdateHandler, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		r:        r,
		w:        w,
		onUpdate: onUpdate,
		logger:   logger.With("component", "tdlib_client"),
		out:      make(chan []byte, outboundQueueSize),
		readDone: make(chan struct{}),
		pending:  make(map[string]ResultHandler),
	}
}

// Send queues fn for delivery and returns without waiting for the response.
// When a response arrives, h is called from the delivery goroutine. h may be nil.
func (c *Client) Send(fn Function, h ResultHandler) error {
	extra := uuid.NewString()
	data, err := Encode(fn, extra)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.out <- data:
	default:
		return fmt.Errorf("send %s: %w", fn.Type(), ErrQueueFull)
	}
	if h != nil {
		c.pending[extra] = h
	}
	c.logger.Debug("Queued request", "type", fn.Type(), "extra", extra)
	return nil
}

// Run pumps requests and incoming objects until ctx is cancelled or the stream
// ends. It returns nil on cancellation and ErrClosed if the remote side hangs up.
func (c *Client) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.writeLoop(gCtx) })
	g.Go(func() error { return c.readLoop(gCtx) })
	g.Go(func() error {
		<-gCtx.Done()
		// Unblock the reader, which does not observe the context.
		if closer, ok := c.r.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil
	})

	err := g.Wait()
	c.shutdown()

	if ctx.Err() != nil {
		c.logger.Info("TDLib client stopped")
		return nil
	}
	return err
}

func (c *Client) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data := <-c.out:
			data = append(data, '\n')
			if _, err := c.w.Write(data); err != nil {
				c.logger.Error("Failed to write request", "error", err)
				return fmt.Errorf("write request: %w", err)
			}
		}
	}
}

// ReaderDone is closed once Run has stopped reading from the stream, either
// at EOF or after cancellation. The stream owner must not close it before.
func (c *Client) ReaderDone() <-chan struct{} {
	return c.readDone
}

func (c *Client) readLoop(ctx context.Context) error {
	defer close(c.readDone)
	scanner := bufio.NewScanner(c.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxObjectSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		c.deliver(ctx, line)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read objects: %w", err)
	}
	return ErrClosed
}

func (c *Client) deliver(ctx context.Context, line []byte) {
	obj, extra, err := Decode(line)
	if err != nil {
		c.logger.Warn("Skipping undecodable object", "error", err, "size", len(line))
		metrics.DecodeErrors.Inc()
		return
	}

	if extra != "" {
		c.mu.Lock()
		h, ok := c.pending[extra]
		delete(c.pending, extra)
		c.mu.Unlock()
		if ok {
			h(obj)
			return
		}
	}

	if c.onUpdate != nil {
		c.onUpdate(ctx, obj)
	}
}

func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if n := len(c.pending); n > 0 {
		c.logger.Warn("Dropping handlers for unanswered requests", "count", n)
	}
	c.pending = make(map[string]ResultHandler)
}
