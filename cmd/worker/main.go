package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lxlab/oss-scout/internal/setup"
	"github.com/lxlab/oss-scout/internal/setup/logger"
	"github.com/lxlab/oss-scout/internal/stream"
	"github.com/lxlab/oss-scout/internal/stream/redis"
)

func main() {
	// Structured JSON logging for the long-running worker.
	workerLogger := logger.New(os.Getenv("LOG_LEVEL"))
	log.Logger = workerLogger

	// Load env
	if err := godotenv.Load(); err != nil {
		workerLogger.Warn().Msg("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg, &workerLogger)
	if err != nil {
		workerLogger.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	streamName := getEnv("SEARCH_STREAM", "search-requests")
	resultStream := getEnv("RESULT_STREAM", "search-results")
	group := getEnv("SEARCH_GROUP", "scout-group")

	streamCfg := &stream.StreamConfig{
		Provider: os.Getenv("STREAM_PROVIDER"),
		RedisConfig: redis.NewRedisStreamConfig(
			cfg.RedisAddr,
			cfg.RedisPassword,
			streamName,
			resultStream,
			group,
			os.Getenv("HOSTNAME"),
		),
	}

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, deps.Coordinator, &workerLogger)
	if err != nil {
		workerLogger.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	if err := consumer.Setup(ctx); err != nil {
		workerLogger.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			workerLogger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	<-ctx.Done()
	workerLogger.Info().Msg("Shutting down...")

	if err := consumer.Stop(); err != nil {
		workerLogger.Error().Err(err).Msg("Failed to stop consumer")
	}

	workerLogger.Info().Msg("OSS Scout worker stopped")
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}
