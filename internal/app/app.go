// Package app wires configuration into a ready reminder store.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/notexe/ledger-reminders/internal/backend"
	"github.com/notexe/ledger-reminders/internal/cache"
	"github.com/notexe/ledger-reminders/internal/config"
	"github.com/notexe/ledger-reminders/internal/logging"
	"github.com/notexe/ledger-reminders/internal/notify"
	"github.com/notexe/ledger-reminders/internal/reminder"
	"github.com/notexe/ledger-reminders/internal/scheduler"
	"go.uber.org/zap"
)

// App holds the components shared by the CLI and the MCP server.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Location *time.Location
	Client   *backend.Client
	Notifier *notify.Notifier
	Store    *reminder.Store

	cache cache.Cache
}

// New builds the stack from cfg. sinks receive popups; a Telegram sink
// is appended when enabled. The cached list is restored before return.
func New(ctx context.Context, cfg *config.Config, sinks ...notify.Sink) (*App, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := backend.NewClient(cfg.Backend, logger)
	client.OnUnauthorized(func() {
		logger.Warn("session expired, set a new token with REMINDERS_TOKEN")
	})

	// A broken cache only costs the offline list.
	c, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
		c = nil
	}

	notifier := notify.New(cfg.NoticeDuration(), sinks...)
	if cfg.Notify.Telegram.Enabled {
		notifier.AddSink(notify.NewTelegramSink(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, logger))
	}

	opts := reminder.Options{Location: loc, Logger: logger}
	if c != nil {
		opts.Cache = c
	}
	store := reminder.NewStore(client, notifier, opts)
	store.Restore(ctx)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
		Client:   client,
		Notifier: notifier,
		Store:    store,
		cache:    c,
	}, nil
}

// Scheduler returns a scheduler for the store using the configured
// intervals.
func (a *App) Scheduler() *scheduler.Scheduler {
	return scheduler.New(a.Store, scheduler.Options{
		TickInterval:    a.Config.TickInterval(),
		RefreshInterval: a.Config.RefreshInterval(),
	}, a.Logger)
}

func (a *App) Close() error {
	a.Logger.Sync()
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			return fmt.Errorf("close cache: %w", err)
		}
	}
	return nil
}
