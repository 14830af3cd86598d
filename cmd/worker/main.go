package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/testforge-labs/testforge/internal/config"
	"github.com/testforge-labs/testforge/internal/jobqueue"
	"github.com/testforge-labs/testforge/internal/llm"
	"github.com/testforge-labs/testforge/internal/store"
	minioclient "github.com/testforge-labs/testforge/internal/store/minio"
	"github.com/testforge-labs/testforge/internal/store/postgres"
	vk "github.com/testforge-labs/testforge/internal/store/valkey"
	"github.com/testforge-labs/testforge/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	s := store.New(pool)

	// Valkey
	vkClient, err := vk.NewClient(cfg.Valkey)
	if err != nil {
		logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer vkClient.Close()
	logger.Info("connected to valkey")

	// MinIO
	mc, err := minioclient.NewClient(cfg.MinIO)
	if err != nil {
		logger.Error("failed to connect to minio", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := mc.EnsureBucket(ctx); err != nil {
		logger.Error("failed to ensure minio bucket", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to minio")

	// LLM client (OpenAI-compatible endpoint or Bedrock)
	llmClient, err := llm.New(cfg)
	if err != nil {
		logger.Error("failed to init llm client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("llm client ready", slog.String("model", llmClient.Model()))

	w := worker.New(s, mc, llmClient, cfg, logger)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "worker"
	}
	consumerID := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	consumer := jobqueue.NewConsumer(vkClient, consumerID, logger)
	if err := consumer.EnsureGroup(ctx); err != nil {
		logger.Error("failed to create consumer group", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("worker started",
		slog.String("consumer_id", consumerID),
		slog.Int("max_iterations", cfg.Pipeline.MaxIterations))

	if err := consumer.Consume(ctx, w.Process); err != nil && err != context.Canceled {
		logger.Error("consumer stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("worker stopped")
}
