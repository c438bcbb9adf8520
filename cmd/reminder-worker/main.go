package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nozze/internal/amqp"
	"nozze/internal/cli"
	"nozze/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reminderConfig := services.ReminderConfig{
		LeadDays:     cfg.ReminderLeadDays,
		ScanInterval: cfg.ReminderInterval,
	}
	processor := services.NewReminderProcessor(sqliteRepo, amqpClient, reminderConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Reminder processor configured",
		"lead_days", cfg.ReminderLeadDays,
		"scan_interval", cfg.ReminderInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// Start runs an initial pass immediately, then the ticker takes over.
	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start reminder processor", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := processor.Stop(stopCtx); err != nil {
		logger.Warn("Reminder processor stop error", "error", err)
	}
	cancel()

	logger.Info("Worker shutdown complete")
}
