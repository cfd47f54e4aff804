package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/adapter/repo"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/infra"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/jobs"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/genai"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/image"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/queue"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/strategy"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: redis connection failed")
	}
	defer redisClient.Close()

	httpClient := &http.Client{Timeout: 60 * time.Second}
	geminiClient, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure text client")
	}
	imageClient, err := image.NewClient(image.Options{
		APIKey:      cfg.ImageAPIKey,
		BaseURL:     cfg.ImageBaseURL,
		Model:       cfg.ImageModel,
		CallbackURL: cfg.ImageCallbackURL,
		HTTPClient:  httpClient,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure image client")
	}

	jobRepo := repo.NewJobRepository(pool)
	jobQueue := queue.NewRedis(redisClient, cfg.QueueKey)
	strategies := strategy.NewRegistry(geminiClient, imageClient)

	sweeper := jobs.NewSweeper(jobRepo, jobQueue, logger, cfg.SweepInterval, cfg.QueuedTimeout)
	go sweeper.Run(ctx)

	worker := jobs.NewWorker(jobQueue, jobRepo, strategies, logger, jobs.WorkerOptions{
		PollInterval:   cfg.WorkerPollInterval,
		FailureBackoff: cfg.WorkerFailureBackoff,
	})
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: loop stopped unexpectedly")
	}
	logger.Info().Msg("worker stopped")
}
