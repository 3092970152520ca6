package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilhanBektas/cs2-backend/internal/api"
	"github.com/ilhanBektas/cs2-backend/internal/cache"
	"github.com/ilhanBektas/cs2-backend/internal/config"
	"github.com/ilhanBektas/cs2-backend/internal/engine"
	"github.com/ilhanBektas/cs2-backend/internal/kv"
	"github.com/ilhanBektas/cs2-backend/internal/logger"
	"github.com/ilhanBektas/cs2-backend/internal/notify"
	"github.com/ilhanBektas/cs2-backend/internal/pandascore"
	"github.com/ilhanBektas/cs2-backend/internal/push"
	"github.com/ilhanBektas/cs2-backend/internal/subscription"
	"github.com/ilhanBektas/cs2-backend/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store := openStore(cfg.Storage.DBPath)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store: %v", err)
		}
	}()

	c := cache.New(store, cache.Options{
		MatchTTL:     cfg.Engine.MatchTTL,
		SnapshotTTL:  cfg.Engine.SnapshotTTL,
		StandingsTTL: cfg.Engine.StandingsTTL,
	})

	registry := subscription.NewRegistry(c, subscription.NewAliases(cfg.Aliases))

	var dispatcher *notify.Dispatcher
	if cfg.Push.Enabled {
		pushClient, err := push.NewClient(
			cfg.Push.Endpoint,
			cfg.Push.ServerKey,
			cfg.Push.Timeout,
			cfg.Push.MaxRetries,
			cfg.Push.RetryDelayBase,
		)
		if err != nil {
			logger.Fatal("Failed to initialize push client: %v", err)
		}
		dispatcher = notify.NewDispatcher(registry, pushClient)
		logger.Info("Push notifications enabled")
	} else {
		logger.Debug("Push notifications disabled")
	}

	psClient := pandascore.NewClient(
		cfg.PandaScore.BaseURL,
		cfg.PandaScore.Token,
		cfg.PandaScore.Timeout,
		pandascore.ClientConfig{
			PerPage:        cfg.PandaScore.PerPage,
			MaxPages:       cfg.PandaScore.MaxPages,
			MaxRetries:     cfg.PandaScore.MaxRetries,
			RetryDelayBase: cfg.PandaScore.RetryDelayBase,
		},
	)

	eng := engine.New(c, psClient, dispatcher, engine.Config{
		ReminderWindow: cfg.Engine.ReminderWindow,
		MinPrizePool:   cfg.Engine.MinPrizePool,
	})

	var telegramClient *telegram.Client
	if cfg.Telegram.Enabled {
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		logger.Info("Telegram ops alerts enabled")
	} else {
		logger.Debug("Telegram ops alerts disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(eng, registry, psClient),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("HTTP server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed: %v", err)
		}
		cancel()
	}()

	if cfg.Telegram.Enabled && telegramClient != nil {
		telegramClient.ListenForCommands(ctx)
	}

	logger.Info("Starting sync service (interval: %v, reminder_window: %v, min_prize_pool: %d)",
		cfg.PandaScore.PollInterval,
		cfg.Engine.ReminderWindow,
		cfg.Engine.MinPrizePool,
	)

	ticker := time.NewTicker(cfg.PandaScore.PollInterval)
	defer ticker.Stop()

	consecutiveFailures := 0

	handleCycleResult := func(err error) {
		if err != nil {
			consecutiveFailures++
			logger.Error("Sync cycle failed: %v", err)
			if consecutiveFailures == 1 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendError(err); sendErr != nil {
					logger.Warn("Failed to send error notification to Telegram: %v", sendErr)
				}
			}
		} else {
			if consecutiveFailures > 0 && cfg.Telegram.Enabled && telegramClient != nil {
				if sendErr := telegramClient.SendRecovery(consecutiveFailures); sendErr != nil {
					logger.Warn("Failed to send recovery notification to Telegram: %v", sendErr)
				}
			}
			consecutiveFailures = 0
		}
	}

	logger.Debug("Running initial sync cycle")
	handleCycleResult(eng.RunCycle(ctx))

	for {
		select {
		case <-ctx.Done():
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			logger.Debug("Starting scheduled sync cycle")
			handleCycleResult(eng.RunCycle(ctx))
		}
	}
}

// openStore opens the SQLite-backed store, falling back to an
// in-memory store when the database cannot be opened. The service
// keeps serving either way; only durability across restarts is lost.
func openStore(dbPath string) kv.Store {
	store, err := kv.OpenSQLite(dbPath)
	if err != nil {
		logger.Warn("Failed to open SQLite store at %s, using in-memory store: %v", dbPath, err)
		return kv.NewMemory()
	}
	logger.Info("SQLite store opened at %s", dbPath)
	return store
}
