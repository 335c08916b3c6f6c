package bot

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/yugram/internal/config"
	"github.com/edgard/yugram/internal/dispatch"
	"github.com/edgard/yugram/internal/tdlib"
)

type pipes struct {
	inR  *io.PipeReader
	inW  *io.PipeWriter
	outR *io.PipeReader
	outW *io.PipeWriter
}

func newPipes() pipes {
	var p pipes
	p.inR, p.inW = io.Pipe()
	p.outR, p.outW = io.Pipe()
	return p
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProcess struct {
	exit   chan error
	killed chan struct{}
	once   sync.Once

	// readerDone, when set, is checked on Wait to record whether the
	// channel was still reading the relay's stdout.
	readerDone  <-chan struct{}
	waitedEarly atomic.Bool
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{exit: make(chan error, 1), killed: make(chan struct{})}
}

func (f *fakeProcess) Wait() error {
	if f.readerDone != nil {
		select {
		case <-f.readerDone:
		default:
			f.waitedEarly.Store(true)
		}
	}
	select {
	case err := <-f.exit:
		return err
	case <-f.killed:
		return errors.New("signal: killed")
	}
}

func (f *fakeProcess) Kill() error {
	f.once.Do(func() { close(f.killed) })
	return nil
}

func TestBotRunDeliversUpdatesAndConfiguresLog(t *testing.T) {
	t.Parallel()

	p := newPipes()
	log := discardLogger()
	disp := dispatch.New(log)
	got := make(chan tdlib.Object, 1)
	require.NoError(t, disp.Route(tdlib.TypeUpdateNewChat, func(_ context.Context, u tdlib.Object) error {
		got <- u
		return nil
	}))

	client := tdlib.NewClient(p.inR, p.outW, disp.Submit, log)
	relay := newFakeProcess()
	relay.readerDone = client.ReaderDone()
	cfg := &config.Config{TDLib: config.TDLibConfig{LogVerbosity: 2, LogFile: "/var/log/td.log", LogMaxFileSize: 1024}}
	b := NewBot(log, cfg, Components{Channel: client, Relay: relay, Dispatcher: disp})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	scanner := bufio.NewScanner(p.outR)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), `"@type":"setLogVerbosityLevel"`)
	assert.Contains(t, scanner.Text(), `"new_verbosity_level":2`)
	require.True(t, scanner.Scan())
	assert.Contains(t, scanner.Text(), `"@type":"setLogStream"`)
	assert.Contains(t, scanner.Text(), `"path":"/var/log/td.log"`)

	_, err := io.WriteString(p.inW, `{"@type":"updateNewChat","chat":{"id":5,"type":{"@type":"chatTypePrivate","user_id":5},"title":"Five"}}`+"\n")
	require.NoError(t, err)

	select {
	case u := <-got:
		chat, ok := u.(*tdlib.UpdateNewChat)
		require.True(t, ok)
		assert.Equal(t, int64(5), chat.Chat.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("update was not dispatched")
	}
	assert.True(t, disp.Ready())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.False(t, relay.waitedEarly.Load())
}

func TestBotRunFailsWhenChannelCloses(t *testing.T) {
	t.Parallel()

	p := newPipes()
	go func() { _, _ = io.Copy(io.Discard, p.outR) }()

	log := discardLogger()
	disp := dispatch.New(log)
	client := tdlib.NewClient(p.inR, p.outW, disp.Submit, log)
	b := NewBot(log, &config.Config{}, Components{Channel: client, Dispatcher: disp})

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	require.NoError(t, p.inW.Close())
	select {
	case err := <-done:
		require.ErrorIs(t, err, tdlib.ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
}

func TestBotRunFailsWhenRelayExits(t *testing.T) {
	t.Parallel()

	p := newPipes()
	go func() { _, _ = io.Copy(io.Discard, p.outR) }()

	log := discardLogger()
	disp := dispatch.New(log)
	client := tdlib.NewClient(p.inR, p.outW, disp.Submit, log)
	relay := newFakeProcess()
	relay.readerDone = client.ReaderDone()
	b := NewBot(log, &config.Config{}, Components{Channel: client, Relay: relay, Dispatcher: disp})

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	// The relay exits first; its stdout reaches EOF afterwards.
	relay.exit <- errors.New("exit status 1")
	select {
	case err := <-done:
		t.Fatalf("Run returned before the relay's stdout closed: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	require.NoError(t, p.inW.Close())

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the relay exited")
	}
	assert.False(t, relay.waitedEarly.Load(), "relay was waited on while its stdout was still being read")
}

func TestBotRunRequiresChannel(t *testing.T) {
	t.Parallel()

	b := NewBot(discardLogger(), &config.Config{}, Components{})
	require.Error(t, b.Run(context.Background()))
}
