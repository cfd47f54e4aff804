package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/adapter/repo"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/assets"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/http/handlers"
	httpapi "github.com/dhsg225/marketing-saas-platform-sub004/internal/http/httpapi"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/infra"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/infra/geoip"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/jobs"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/queue"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	redisClient, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer redisClient.Close()

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, country enrichment disabled")
	}

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	fileStore, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}
	cdnStore, err := storage.NewCDNStore(fileStore, cfg.StorageBaseURL, &http.Client{Timeout: 60 * time.Second})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure permanent store")
	}

	jobRepo := repo.NewJobRepository(dbpool)
	assetRepo := repo.NewAssetRepository(dbpool)
	jobQueue := queue.NewRedis(redisClient, cfg.QueueKey)

	transferWorker := assets.NewTransferWorker(cdnStore, assetRepo, logger, cfg.TransferQueueSize)
	transferCtx, stopTransfers := context.WithCancel(ctx)
	go transferWorker.Run(transferCtx)

	materializer := assets.NewMaterializer(assetRepo, transferWorker, "dashscope", logger)
	producer := jobs.NewProducer(jobRepo, jobQueue, logger)

	app := handlers.NewApp(logger, producer, jobRepo, assetRepo, materializer)
	router := httpapi.NewRouter(app, cfg, logger, countries)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	stopTransfers()
	logger.Info().Msg("server stopped")
}
