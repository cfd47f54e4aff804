package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

type assetItem struct {
	ID         string         `json:"id"`
	ProjectID  string         `json:"project_id"`
	FileName   string         `json:"file_name"`
	StorageURL string         `json:"storage_url"`
	Scope      string         `json:"scope"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ListJobAssets returns the materialized assets of an image job, with their
// current storage URL (ephemeral until the transfer lands, permanent after).
func (a *App) ListJobAssets(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	if _, err := a.Jobs.GetByID(r.Context(), jobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: load job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	assets, err := a.Assets.ListByJobID(r.Context(), jobID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("handlers: load assets failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	items := make([]assetItem, 0, len(assets))
	for _, asset := range assets {
		items = append(items, assetItem{
			ID:         asset.ID,
			ProjectID:  asset.ProjectID,
			FileName:   asset.FileName,
			StorageURL: asset.StorageURL,
			Scope:      string(asset.Scope),
			Metadata:   asset.Metadata,
			CreatedAt:  asset.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
