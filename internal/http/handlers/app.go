// Package handlers implements the versioned HTTP surface: job submission and
// status reads for callers, plus the provider-facing completion callback.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/jobs"
)

// JobSubmitter is the producer behavior the submission endpoint depends on.
type JobSubmitter interface {
	Submit(ctx context.Context, req jobs.SubmitRequest) (*domain.Job, error)
}

// AssetMaterializer persists image results before the callback is
// acknowledged.
type AssetMaterializer interface {
	Materialize(ctx context.Context, job *domain.Job, resultURLs []string) ([]string, error)
}

// App bundles the dependencies the handlers share.
type App struct {
	Logger       zerolog.Logger
	Producer     JobSubmitter
	Jobs         domain.JobRepository
	Assets       domain.AssetRepository
	Materializer AssetMaterializer
}

func NewApp(logger zerolog.Logger, producer JobSubmitter, jobRepo domain.JobRepository, assetRepo domain.AssetRepository, materializer AssetMaterializer) *App {
	return &App{
		Logger:       logger,
		Producer:     producer,
		Jobs:         jobRepo,
		Assets:       assetRepo,
		Materializer: materializer,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
