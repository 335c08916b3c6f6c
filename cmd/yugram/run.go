package main

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/yugram/internal/auth"
	"github.com/edgard/yugram/internal/bot"
	"github.com/edgard/yugram/internal/bot/handlers"
	"github.com/edgard/yugram/internal/bot/tasks"
	"github.com/edgard/yugram/internal/config"
	"github.com/edgard/yugram/internal/database"
	"github.com/edgard/yugram/internal/dispatch"
	"github.com/edgard/yugram/internal/httpapi"
	"github.com/edgard/yugram/internal/logger"
	"github.com/edgard/yugram/internal/reconcile"
	"github.com/edgard/yugram/internal/tdlib"
	"github.com/edgard/yugram/internal/telegram"
)

// runService initializes and starts all components (config, logger, store,
// TDLib relay, dispatcher, HTTP, control bot, scheduler) and blocks until ctx
// is cancelled or a component fails.
func runService(ctx context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, databaseOptions(cfg.Database))
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return err
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	filter, err := reconcile.NewChatFilter(cfg.Messages.SaveChatIDs, cfg.Messages.SkipChatIDs)
	if err != nil {
		log.Error("Invalid message filter", "error", err)
		return err
	}
	log.Info("Message filter configured", "filter", filter, "source", cfg.Messages.Source)

	disp := dispatch.New(log)

	relay, err := tdlib.StartRelay(ctx, cfg.TDLib.Command, log)
	if err != nil {
		log.Error("Failed to start TDLib relay", "error", err)
		return err
	}
	defer func() { _ = relay.Kill() }()
	client := tdlib.NewClient(relay.Stdout, relay.Stdin, disp.Submit, log)

	creds := auth.Credentials{PhoneNumber: cfg.TDLib.PhoneNumber, Password: cfg.TDLib.Password}
	authorizer := auth.New(client, tdlibParameters(cfg.TDLib), creds, log)
	if err := disp.Route(tdlib.TypeUpdateAuthorizationState, authorizer.HandleUpdate); err != nil {
		return err
	}

	engine := reconcile.NewEngine(store, filter, log)
	for tag, h := range engine.Routes() {
		if err := disp.Route(tag, h); err != nil {
			return err
		}
	}

	components := bot.Components{
		Channel:    client,
		Relay:      relay,
		Dispatcher: disp,
	}

	if cfg.HTTP.Enabled {
		components.HTTP = httpapi.NewRouter(authorizer, disp, store, log)
	}

	if cfg.Telegram.Enabled {
		tg, err := newControlBot(cfg, log, handlers.HandlerDeps{
			Logger:  log,
			AdminID: cfg.Telegram.AdminID,
			Auth:    authorizer,
			Store:   store,
		})
		if err != nil {
			return err
		}
		components.Telegram = tg
	}

	sched, err := bot.NewScheduler(log, cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Store: store}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return err
	}
	components.Scheduler = sched

	app := bot.NewBot(log, cfg, components)

	log.Info("Starting yugram...")
	return app.Run(ctx)
}

// runMigrate applies the schema migrations and exits.
func runMigrate(_ context.Context, configPath string) error {
	cfg, log, err := setup(configPath)
	if err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, databaseOptions(cfg.Database))
	if err != nil {
		log.Error("Failed to migrate database", "path", cfg.Database.Path, "error", err)
		return err
	}
	database.CloseDB(db)
	log.Info("Database is up to date", "path", cfg.Database.Path)
	return nil
}

// setup loads the configuration and installs the configured logger.
func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return nil, nil, err
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format == "json")
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)
	log.Info("Configuration loaded",
		"database", cfg.Database.Path,
		"relay", cfg.TDLib.Command[0],
		"credentials", cfg.TDLib.Credentials(),
		"http_enabled", cfg.HTTP.Enabled,
		"telegram_enabled", cfg.Telegram.Enabled,
	)
	return cfg, log, nil
}

func newControlBot(cfg *config.Config, log *slog.Logger, deps handlers.HandlerDeps) (*tgbot.Bot, error) {
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return nil, err
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(deps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return nil, fmt.Errorf("register handlers: %w", err)
	}
	return tg, nil
}

func databaseOptions(c config.DatabaseConfig) database.Options {
	return database.Options{
		MaxOpenConns:    c.MaxOpenConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		BusyTimeout:     c.BusyTimeout,
	}
}

func tdlibParameters(c config.TDLibConfig) tdlib.SetTdlibParameters {
	return tdlib.SetTdlibParameters{
		UseTestDC:             c.UseTestDC,
		DatabaseDirectory:     c.DatabaseDirectory,
		FilesDirectory:        c.FilesDirectory,
		DatabaseEncryptionKey: c.DatabaseEncryptionKey,
		UseFileDatabase:       c.UseFileDatabase,
		UseChatInfoDatabase:   c.UseChatInfoDatabase,
		UseMessageDatabase:    c.UseMessageDatabase,
		UseSecretChats:        c.UseSecretChats,
		APIID:                 c.APIID,
		APIHash:               c.APIHash,
		SystemLanguageCode:    c.SystemLanguageCode,
		DeviceModel:           c.DeviceModel,
		SystemVersion:         c.SystemVersion,
		ApplicationVersion:    c.ApplicationVersion,
	}
}
