package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/cli"
	"spendlog/internal/extract"
	apphttp "spendlog/internal/http"
	"spendlog/internal/ingest"
	"spendlog/internal/report"
	"spendlog/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	extractClient, narrativeClient := cli.InitLLMClients(cfg)

	// AMQP is optional; without it created expenses are simply not mirrored.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	var transcriber ingest.Transcriber
	if cfg.TranscriberURL != "" {
		transcriber = ingest.NewRemoteTranscriber(cfg.TranscriberURL)
		logger.Info("Remote transcriber configured", "endpoint", cfg.TranscriberURL)
	}
	var textReader ingest.TextReader
	if cfg.TextReaderURL != "" {
		textReader = ingest.NewRemoteTextReader(cfg.TextReaderURL)
		logger.Info("Remote text reader configured", "endpoint", cfg.TextReaderURL)
	}

	pipeline := extract.NewPipeline(extractClient)
	expenseService := services.NewExpenseService(pipeline, sqliteRepo, publisher)
	reportService := report.NewService(narrativeClient)

	srv := apphttp.NewServer(":"+cfg.Port, expenseService, reportService, apphttp.Options{
		Transcriber:   transcriber,
		TextReader:    textReader,
		ReadyCheck:    sqliteRepo.Ping,
		PostRateLimit: cfg.RateLimitPerMinute,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 150 * time.Second // must outlive the narrative timeout
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spendlog server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
