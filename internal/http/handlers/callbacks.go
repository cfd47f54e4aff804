package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

type imageCallbackRequest struct {
	TaskID       string   `json:"task_id"`
	Status       string   `json:"status"`
	ResultURLs   []string `json:"result_urls"`
	ErrorMessage string   `json:"error_message"`
}

type imageCallbackResponse struct {
	Matched bool   `json:"matched"`
	JobID   string `json:"job_id,omitempty"`
}

// ImageGenerationCallback receives the provider's completion notification for
// an async image job. The handler always acknowledges with 200 when it can
// act on the notification; an unmatched task id is acknowledged too, so the
// provider stops retrying a submission we no longer track. Duplicate
// deliveries are no-ops because the completion transition is conditional.
func (a *App) ImageGenerationCallback(w http.ResponseWriter, r *http.Request) {
	var req imageCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.TaskID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "task_id required")
		return
	}

	job, err := a.Jobs.GetByProviderTaskID(r.Context(), req.TaskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.Logger.Warn().Err(domain.ErrUnmatchedTask).Str("task_id", req.TaskID).Msg("handlers: callback for unknown task")
			a.json(w, http.StatusOK, imageCallbackResponse{Matched: false})
			return
		}
		a.Logger.Error().Err(err).Str("task_id", req.TaskID).Msg("handlers: callback lookup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to resolve task")
		return
	}

	if job.Status.Terminal() {
		a.json(w, http.StatusOK, imageCallbackResponse{Matched: true, JobID: job.ID})
		return
	}

	now := time.Now().UTC()
	if !callbackSucceeded(req.Status) {
		message := req.ErrorMessage
		if message == "" {
			message = "provider reported generation failure"
		}
		if _, err := a.Jobs.Fail(r.Context(), job.ID, message, now); err != nil {
			a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("handlers: mark failed errored")
			a.error(w, http.StatusInternalServerError, "internal", "failed to record failure")
			return
		}
		a.json(w, http.StatusOK, imageCallbackResponse{Matched: true, JobID: job.ID})
		return
	}

	if len(req.ResultURLs) == 0 {
		if _, err := a.Jobs.Fail(r.Context(), job.ID, "provider reported success without results", now); err != nil {
			a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("handlers: mark failed errored")
		}
		a.json(w, http.StatusOK, imageCallbackResponse{Matched: true, JobID: job.ID})
		return
	}

	assetIDs, err := a.Materializer.Materialize(r.Context(), job, req.ResultURLs)
	if err != nil {
		// Persistence must succeed before the provider is acknowledged,
		// otherwise a retry is the only path to the assets.
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("handlers: asset persistence failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist assets")
		return
	}

	result := domain.MustMarshal(domain.ImageResult{URL: req.ResultURLs[0], AssetIDs: assetIDs})
	if _, err := a.Jobs.Complete(r.Context(), job.ID, result, now); err != nil {
		a.Logger.Error().Err(err).Str("job_id", job.ID).Msg("handlers: complete failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to complete job")
		return
	}
	a.Logger.Info().
		Str("job_id", job.ID).
		Str("task_id", req.TaskID).
		Int("assets", len(assetIDs)).
		Msg("handlers: image job completed via callback")
	a.json(w, http.StatusOK, imageCallbackResponse{Matched: true, JobID: job.ID})
}

func callbackSucceeded(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded", "success", "completed":
		return true
	default:
		return false
	}
}
