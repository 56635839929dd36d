package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AngeYobo/oxalio/internal/config"
	"github.com/AngeYobo/oxalio/internal/dgi"
	"github.com/AngeYobo/oxalio/internal/infra"
	"github.com/AngeYobo/oxalio/internal/repository"
	"github.com/AngeYobo/oxalio/internal/router"
	"github.com/AngeYobo/oxalio/internal/service"
	"github.com/AngeYobo/oxalio/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger — dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// DGI client — the mock signs locally so the full invoice flow works
	// without tax authority credentials.
	var (
		dgiClient dgi.Client
		dgiCB     *infra.CircuitBreaker
	)
	if cfg.DgiMock {
		dgiClient = dgi.NewMockClient("")
		log.Warn().Msg("DGI mock enabled, invoices are signed locally")
	} else {
		dgiCB = infra.NewCircuitBreaker(infra.DefaultCBConfig())
		dgiClient = dgi.NewHTTPClient(dgi.Config{
			BaseURL: cfg.DgiBaseURL,
			APIKey:  cfg.DgiAPIKey,
			Timeout: cfg.DgiTimeout(),
			Retry: dgi.RetryConfig{
				MaxAttempts:     cfg.DgiRetryMaxAttempts,
				InitialInterval: time.Duration(cfg.DgiRetryInitialInterval) * time.Millisecond,
				Multiplier:      cfg.DgiRetryMultiplier,
				MaxInterval:     time.Duration(cfg.DgiRetryMaxInterval) * time.Millisecond,
			},
		}, dgiCB)
	}

	// Async workers are wired here (composition root) so the pool has full
	// access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	invoiceRepo := repository.NewInvoiceRepository(db)
	terminalRepo := repository.NewTerminalRepository(db)
	commandRepo := repository.NewTerminalCommandRepository(db)

	invoiceSvc := service.NewInvoiceService(invoiceRepo, dgiClient, cfg, dispatcher)
	commandSvc := service.NewCommandService(commandRepo, terminalRepo)

	handlers := map[string]worker.Handler{
		worker.QueueReceipt: worker.NewReceiptWorker(invoiceSvc, dispatcher, cfg.PDFStoragePath),
		worker.QueueEmail:   worker.NewEmailWorker(mailer),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	worker.StartCommandExpiryCron(ctx, commandSvc, cfg.CommandTTL())

	r := router.New(cfg, db, rdb, dgiClient, dgiCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("oxalio backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
