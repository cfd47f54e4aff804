package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. Scheduling knobs for the worker loop and the transfer pool are
// explicit here so tests and deployments can tune timing without code edits.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	RedisAddr   string
	QueueKey    string

	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	ImageAPIKey      string
	ImageModel       string
	ImageBaseURL     string
	ImageCallbackURL string

	WorkerPollInterval   time.Duration
	WorkerFailureBackoff time.Duration
	SweepInterval        time.Duration
	QueuedTimeout        time.Duration
	TransferQueueSize    int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int

	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		QueueKey:    getEnv("QUEUE_KEY", "jobs:queue"),

		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		ImageAPIKey:      os.Getenv("IMAGE_API_KEY"),
		ImageModel:       getEnv("IMAGE_MODEL", "wanx2.1-t2i-turbo"),
		ImageBaseURL:     getEnv("IMAGE_BASE_URL", "https://dashscope-intl.aliyuncs.com/api/v1"),
		ImageCallbackURL: os.Getenv("IMAGE_CALLBACK_URL"),

		WorkerPollInterval:   time.Second * time.Duration(getEnvInt("WORKER_POLL_INTERVAL_SECONDS", 5)),
		WorkerFailureBackoff: time.Second * time.Duration(getEnvInt("WORKER_FAILURE_BACKOFF_SECONDS", 10)),
		SweepInterval:        time.Second * time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 300)),
		QueuedTimeout:        time.Second * time.Duration(getEnvInt("QUEUED_TIMEOUT_SECONDS", 600)),
		TransferQueueSize:    getEnvInt("TRANSFER_QUEUE_SIZE", 64),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
