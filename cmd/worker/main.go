package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"where2eat-worker/config"
	"where2eat-worker/container"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting Where2Eat Analysis Worker")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("Configuration loaded",
		"worker_id", cfg.Worker.ID,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model,
		"max_concurrent_jobs", cfg.Jobs.MaxConcurrent,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create container
	c, err := container.NewContainer(ctx, cfg)
	if err != nil {
		logger.Error("Failed to create container", "error", err)
		os.Exit(1)
	}

	// Start worker
	logger.Info("Worker starting...")
	if err := c.Start(ctx); err != nil {
		logger.Error("Worker error", "error", err)
	}

	// Graceful shutdown
	c.Stop()
	logger.Info("Worker shutdown complete")
}
