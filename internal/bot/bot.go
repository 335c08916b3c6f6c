// Package bot implements lifecycle management and component orchestration
// for the yugram TDLib bridge.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/yugram/internal/config"
	"github.com/edgard/yugram/internal/httpapi"
	"github.com/edgard/yugram/internal/tdlib"
)

// Channel is the TDLib connection.
type Channel interface {
	Send(fn tdlib.Function, h tdlib.ResultHandler) error
	Run(ctx context.Context) error
	ReaderDone() <-chan struct{}
}

// Process is the relay hosting TDLib.
type Process interface {
	Wait() error
	Kill() error
}

// Readiness gates update delivery until every component is started.
type Readiness interface {
	DeclareReady(ctx context.Context)
}

// Components are the parts the orchestrator runs. Relay, HTTP, Telegram and
// Scheduler are optional.
type Components struct {
	Channel    Channel
	Relay      Process
	Dispatcher Readiness
	HTTP       http.Handler
	Telegram   *tgbot.Bot
	Scheduler  *Scheduler
}

// Bot represents the main application and manages its components' lifecycle.
type Bot struct {
	logger *slog.Logger
	cfg    *config.Config
	c      Components
}

// NewBot creates the orchestrator for the given components.
func NewBot(logger *slog.Logger, cfg *config.Config, c Components) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger: logger.With("component", "bot_orchestrator"),
		cfg:    cfg,
		c:      c,
	}
}

// Run starts the channel first so updates buffer in the dispatcher, then the
// remaining components, and finally declares readiness. It blocks until ctx
// is cancelled or a component fails.
func (b *Bot) Run(ctx context.Context) error {
	if b.c.Channel == nil || b.c.Dispatcher == nil {
		return errors.New("channel and dispatcher are required")
	}
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting TDLib channel...")
		if err := b.c.Channel.Run(gCtx); err != nil {
			return fmt.Errorf("tdlib channel stopped: %w", err)
		}
		b.logger.Info("TDLib channel stopped.")
		return nil
	})

	if b.c.Relay != nil {
		g.Go(func() error {
			// Waiting closes the relay's pipes, so the channel must finish
			// reading its stdout first. On cancellation the channel closes
			// stdout itself.
			<-b.c.Channel.ReaderDone()
			err := b.c.Relay.Wait()
			if gCtx.Err() != nil {
				b.logger.Debug("TDLib relay exited", "error", err)
				return nil
			}
			if err == nil {
				err = errors.New("exited")
			}
			return fmt.Errorf("tdlib relay stopped unexpectedly: %w", err)
		})
		g.Go(func() error {
			<-gCtx.Done()
			if err := b.c.Relay.Kill(); err != nil {
				b.logger.Warn("Failed to stop TDLib relay", "error", err)
			}
			return nil
		})
	}

	if err := b.configureTDLibLog(); err != nil {
		b.logger.Error("Failed to configure TDLib log", "error", err)
	}

	if b.c.HTTP != nil {
		g.Go(func() error {
			b.logger.Info("Starting HTTP server...", "address", b.cfg.HTTP.Addr)
			return httpapi.ServeAndWait(gCtx, b.c.HTTP, b.logger, b.cfg.HTTP)
		})
	}

	if b.c.Telegram != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram bot listener...")

			b.c.Telegram.Start(gCtx)
			b.logger.Info("Telegram bot listener stopped.")

			if gCtx.Err() == nil {
				b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
				return errors.New("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if b.c.Scheduler != nil {
		g.Go(func() error {
			b.logger.Info("Starting scheduler...")
			if err := b.c.Scheduler.Start(); err != nil {
				b.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")

			if err := b.c.Scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	b.c.Dispatcher.DeclareReady(gCtx)

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// configureTDLibLog sets TDLib's verbosity and, when a log file is configured,
// redirects its log there.
func (b *Bot) configureTDLibLog() error {
	tdCfg := b.cfg.TDLib
	if err := b.c.Channel.Send(&tdlib.SetLogVerbosityLevel{NewVerbosityLevel: int32(tdCfg.LogVerbosity)}, nil); err != nil {
		return err
	}
	b.logger.Info("TDLib log verbosity set", "verbosity", tdCfg.LogVerbosity)

	if tdCfg.LogFile == "" {
		return nil
	}
	stream := tdlib.NewLogStreamFile(tdCfg.LogFile, tdCfg.LogMaxFileSize)
	if err := b.c.Channel.Send(&tdlib.SetLogStream{LogStream: stream}, nil); err != nil {
		return err
	}
	b.logger.Info("TDLib log redirected", "path", tdCfg.LogFile, "max_file_size", tdCfg.LogMaxFileSize)
	return nil
}
