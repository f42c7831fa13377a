package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/decision"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/logging"
	"complaintdesk/backend/internal/notify"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	log.Info().Msg("Starting complaint desk backend...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Dependencies
	db, err := storage.OpenPostgres(cfg.Database)
	if err != nil {
		return err
	}
	rdb, err := storage.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := os.MkdirAll(cfg.DecisionsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create decisions directory: %w", err)
	}
	log.Info().Msg("Database and Redis connections established, migrations complete.")

	store := storage.NewStorageService(db, rdb)
	localizer, err := localization.NewLocalizer(cfg.LocalesDir)
	if err != nil {
		return err
	}

	// 2. Notification delivery
	var sinks []notify.Sink
	if cfg.SMTP.Enabled() {
		sinks = append(sinks, notify.NewEmailSink(cfg.SMTP))
	}
	var bot *telegram.BotService
	if cfg.Telegram.Enabled() {
		bot, err = telegram.NewBotService(cfg.Telegram.BotToken, log)
		if err != nil {
			return err
		}
		sinks = append(sinks, bot.Sender())
	}

	dispatcher := notify.NewDispatcher(store, store, log, sinks...)
	hub := notify.NewHub(store, log)

	// 3. Workflow services
	relay := decision.NewRelay(store, dispatcher, cfg.DecisionsDir, log)
	complaints := complaint.NewService(store, dispatcher, relay, log)

	// 4. Background loops
	go hub.Run(ctx)
	hub.StartPubSubListener(ctx)
	go dispatcher.Run(ctx)
	if bot != nil {
		go bot.Run(ctx, telegram.NewCommands(store, dispatcher, localizer))
	}

	// 5. HTTP
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(complaints, relay, dispatcher, hub, store, auth.NewTokens(cfg.JWT), localizer, log)
	server := &http.Server{
		Addr:           cfg.Server.Addr,
		Handler:        h.Router(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
