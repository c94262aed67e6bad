package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zakerny_bot/internal/app"
	"zakerny_bot/internal/infra/aladhan"
	"zakerny_bot/internal/infra/config"
	idb "zakerny_bot/internal/infra/database"
	"zakerny_bot/internal/infra/health"
	"zakerny_bot/internal/infra/logger"
	"zakerny_bot/internal/infra/scheduler"
	"zakerny_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	mainLogger := log.WithField("component", "main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Configuration loaded")

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()
	if err := idb.EnsureSchema(bootCtx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not ensure database schema")
	}
	mainLogger.Info("Database ready")

	// Repositories
	groupRepo := idb.NewPostgresGroupRepository(db)
	subRepo := idb.NewPostgresSubscriptionRepository(db)

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithField("component", "telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	client := telegram.NewTelebotAdapter(bot)

	// Schedule provider
	scheduleCache := aladhan.NewCache(
		aladhan.NewClient(cfg.FetchTimeout, log.WithField("component", "aladhan")),
		log.WithField("component", "schedule_cache"),
	)

	// Services
	subService := app.NewSubscriptionService(subRepo, log.WithField("component", "subscription_service"))
	anchorService := app.NewAnchorService(groupRepo, client, log.WithField("component", "anchor_service"))
	cleanupService := app.NewCleanupService(client, cfg.HistoryScanLimit, log.WithField("component", "cleanup_service"))
	notifier := app.NewNotifierService(
		groupRepo, subRepo, scheduleCache, client, cleanupService,
		cfg.CleanupKeepCount,
		log.WithField("component", "notifier"),
	)

	// Reconcile persisted anchors against live channel state before the
	// first tick and before handlers start serving toggles.
	if err := anchorService.ReconcileAll(bootCtx); err != nil {
		mainLogger.WithError(err).Error("Anchor reconciliation failed; continuing")
	}

	// Handlers
	handlerCtx, handlerCancel := context.WithCancel(context.Background())
	defer handlerCancel()
	telegram.RegisterBotCommands(handlerCtx, bot, subService, anchorService, scheduleCache, log.WithField("component", "handlers"))
	telegram.RegisterCallbackHandlers(handlerCtx, bot, subService, log.WithField("component", "callbacks"))

	// Scheduler
	notifScheduler := scheduler.NewNotificationScheduler(
		notifier.Tick, cfg.TickCronSpec, cfg.TickTimeout,
		log.WithField("component", "scheduler"),
	)
	if err := notifScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start notification scheduler")
	}

	// Liveness endpoint, fully independent of the polling loop.
	healthServer := health.NewServer(cfg.HealthAddr, log.WithField("component", "health"))
	healthServer.Start()

	go bot.Start()
	mainLogger.Info("Application setup complete; bot is running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down...")
	notifScheduler.Stop()
	bot.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Stop(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("Health endpoint shutdown failed")
	}

	mainLogger.Info("Application shut down gracefully")
}
