package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"roomadmin/internal/api"
	"roomadmin/internal/config"
	"roomadmin/internal/events"
	"roomadmin/internal/export"
	"roomadmin/internal/google"
	"roomadmin/internal/kvstore"
	"roomadmin/internal/metrics"
	"roomadmin/internal/notify"
	"roomadmin/internal/repository"
	"roomadmin/internal/seed"
	"roomadmin/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = configureLogger(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store error")
	}
	defer st.Close()

	var servers sync.WaitGroup
	grace := cfg.ShutdownTimeout()

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		serveBackground(ctx, &servers, opsServer(cfg.PrometheusPort(), metricsHandler()), grace, "metrics", &logger)
	}

	loader := seed.NewLoader(repository.New(st.store), &logger)
	if err := loader.Ensure(ctx); err != nil {
		logger.Fatal().Err(err).Msg("seed collections error")
	}

	bus := events.NewEventBus(&logger)
	svc := service.New(loader, bus, &logger)

	var notifier export.Notifier
	if cfg.Telegram.Enabled {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("create telegram bot error")
		}
		bot.Debug = cfg.Telegram.Debug
		tg := notify.NewTelegramNotifier(bot, cfg.Telegram.ChatIDs, notify.DefaultRetryConfig(), &logger)
		bus.SubscribeAsync(tg.HandleBookingEvent, events.BookingTypes...)
		notifier = tg

		if cfg.Telegram.DigestEnabled {
			loc, _ := cfg.DigestLocation()
			digest := notify.NewDigest(notify.DigestConfig{Hour: cfg.Telegram.DigestHour, Location: loc}, svc.Dashboard, tg, &logger)
			go digest.Start(ctx)
		}
		logger.Info().Str("bot", bot.Self.UserName).Int("chats", len(cfg.Telegram.ChatIDs)).Msg("Telegram notifications enabled")
	}

	if cfg.Sheets.Enabled {
		sheetsSvc, err := google.NewSheetsService(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, svc.Dashboard, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("create sheets service error")
		}
		bus.SubscribeAsync(sheetsSvc.HandleEvent, events.AllTypes...)
		go func() {
			if err := sheetsSvc.Sync(ctx); err != nil {
				logger.Warn().Err(err).Msg("Initial sheets sync failed")
			}
		}()
	}

	exportSvc := export.NewService(export.Config{
		Dir:           cfg.ExportDir(),
		ExportOnStart: cfg.Export.ExportOnStart,
	}, svc.Dashboard, nil, notifier, &logger)
	if cfg.Export.Enabled {
		exportSvc.Start()
		defer exportSvc.Stop()
	}

	if cfg.Backup.Enabled {
		if st.sqlite == nil {
			logger.Warn().Str("driver", cfg.StorageDriver()).Msg("Backups need the sqlite store, skipping")
		} else {
			backups := kvstore.NewBackupService(st.sqlite, kvstore.BackupConfig{
				Enabled:       true,
				Interval:      cfg.BackupInterval(),
				StoragePath:   cfg.BackupPath(),
				RetentionDays: cfg.Backup.RetentionDays,
			}, &logger)
			go backups.Start(ctx)
		}
	}

	serveBackground(ctx, &servers, opsServer(cfg.HealthCheckPort(), healthHandler(st.pinger)), grace, "health", &logger)

	perSecond, burst := cfg.RateLimit()
	server := api.NewServer(svc, exportSvc, api.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		RatePerSecond:  perSecond,
		RateBurst:      burst,
		PageSize:       cfg.DefaultPageSize(),
	}, &logger)
	srv := server.NewHTTPServer(cfg.HTTPAddr())

	logger.Info().Str("addr", srv.Addr).Str("storage", cfg.StorageDriver()).Msg("Room admin API started")
	if err := serve(ctx, srv, grace, "api", &logger); err != nil {
		logger.Error().Err(err).Msg("Server error")
	}
	stop()
	servers.Wait()
	bus.Close()
	logger.Info().Msg("Room admin API stopped")
}

func configureLogger(cfg *config.Config, logger zerolog.Logger) zerolog.Logger {
	if !cfg.Logging.Pretty {
		logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	if cfg.Logging.Level == "" {
		return logger
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logger.Warn().Str("level", cfg.Logging.Level).Msg("Unknown log level, keeping info")
		return logger.Level(zerolog.InfoLevel)
	}
	return logger.Level(level)
}
