// Package setup reads environment configuration and wires the pipeline
// dependencies shared by the API server, the stream worker, the batch
// runner, and the MCP server.
package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/cache"
	"github.com/lxlab/oss-scout/internal/config"
	"github.com/lxlab/oss-scout/internal/github"
	"github.com/lxlab/oss-scout/internal/intent"
	"github.com/lxlab/oss-scout/internal/llm"
	"github.com/lxlab/oss-scout/internal/llm/bedrock"
	"github.com/lxlab/oss-scout/internal/llm/openai"
	"github.com/lxlab/oss-scout/internal/pipeline"
	"github.com/lxlab/oss-scout/internal/reason"
	redisconn "github.com/lxlab/oss-scout/internal/redis"
	"github.com/lxlab/oss-scout/internal/scoring"
)

type Config struct {
	Port string

	DefaultProvider string
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	LLMTimeout      time.Duration

	GitHubToken   string
	GitHubBaseURL string
	PageLimit     int

	CacheProvider string
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string

	ReasonConcurrency int
}

type Dependencies struct {
	Coordinator *pipeline.StreamCoordinator
	RedisClient *goredis.Client
	Logger      *zerolog.Logger
}

func LoadConfig() *Config {
	return &Config{
		Port:              getEnv("SCOUT_API_PORT", "8080"),
		DefaultProvider:   getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:     getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:         getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:     getEnv("OPEN_AI_MODEL_ID", ""),
		LLMTimeout:        getEnvDuration("LLM_TIMEOUT", 20*time.Second),
		GitHubToken:       getEnv("GITHUB_TOKEN", ""),
		GitHubBaseURL:     getEnv("GITHUB_API_URL", github.DefaultBaseURL),
		PageLimit:         getEnvInt("SEARCH_PAGE_LIMIT", 3),
		CacheProvider:     getEnv("CACHE_PROVIDER", "memory"),
		CacheTTL:          getEnvDuration("CACHE_TTL", 30*time.Minute),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		ReasonConcurrency: getEnvInt("REASON_CONCURRENCY", 4),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	scoutCfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load scout config: %w", err)
	}

	llmClient := createLLMClient(ctx, cfg, logger)

	parser, err := intent.NewParser(llmClient, scoutCfg.Intent, cfg.LLMTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create intent parser: %w", err)
	}

	generator, err := reason.NewGenerator(llmClient, scoutCfg.Reason, cfg.LLMTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reason generator: %w", err)
	}
	runner := reason.NewRunner(generator, cfg.ReasonConcurrency, logger)

	githubClient := github.NewClient(cfg.GitHubBaseURL, cfg.GitHubToken, logger)
	engine := scoring.NewEngine(scoutCfg.Scoring)

	var redisClient *goredis.Client
	if cfg.CacheProvider == "redis" {
		redisClient, err = redisconn.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 5)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	resultCache, err := cache.NewCache(cfg.CacheProvider, redisClient, cfg.CacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	coordinator := pipeline.NewStreamCoordinator(
		parser,
		githubClient,
		engine,
		runner,
		resultCache,
		cfg.PageLimit,
		logger,
	)

	return &Dependencies{
		Coordinator: coordinator,
		RedisClient: redisClient,
		Logger:      logger,
	}, nil
}

// createLLMClient falls back to heuristic-only operation when no provider
// can be initialized. The pipeline still works, with degraded intent
// parsing and template reasons.
func createLLMClient(ctx context.Context, cfg *Config, logger *zerolog.Logger) llm.LLMClient {
	switch cfg.DefaultProvider {
	case "none":
		logger.Warn().Msg("LLM provider disabled, running heuristic-only")
		return nil

	case "openai":
		client, err := openai.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID)
		if err != nil {
			logger.Warn().Err(err).Msg("OpenAI client unavailable, running heuristic-only")
			return nil
		}
		return client

	default:
		client, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
		if err != nil {
			logger.Warn().Err(err).Msg("Bedrock client unavailable, running heuristic-only")
			return nil
		}
		return client
	}
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}
