package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tenantreport/internal/amqp"
	"tenantreport/internal/cli"
	"tenantreport/internal/metrics"
	"tenantreport/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting report-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	client := cli.InitAPIClient(cfg)

	metrics.Init(sqliteRepo)
	metricsServer := metrics.NewServer(cfg.MetricsAddr)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Metrics server listening", "addr", cfg.MetricsAddr)

	// AMQP is a wake-up channel only; without it the processor still drains
	// the queue on its poll interval.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP disabled - sync relies on queue polling")
	}

	processorCfg := services.DefaultSyncProcessorConfig()
	processorCfg.PollInterval = cfg.SyncInterval
	processorCfg.BatchSize = cfg.SyncBatchSize
	processorCfg.MaxRetries = cfg.MaxRetries

	processor := services.NewSyncProcessor(sqliteRepo, client, processorCfg)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := processor.Stop(stopCtx); err != nil {
			logger.Warn("Sync processor stop failed", "error", err)
		}
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Warn("Metrics server shutdown failed", "error", err)
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", "error", err)
		os.Exit(1)
	}

	if amqpClient != nil {
		go func() {
			err := amqpClient.ConsumeDraftSync(ctx, func(msg *amqp.DraftSyncMessage) error {
				logger.Info("Draft sync requested", "draft_id", msg.DraftID, "version", msg.Version)
				processor.Kick(ctx)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				// The poll loop keeps draining the queue without the broker
				logger.Error("Message consumption failed", "error", err)
			}
		}()
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
