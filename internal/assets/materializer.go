// Package assets persists generated output against its owning project and
// handles the best-effort relocation of files to permanent storage.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

// transferScheduler decouples the materializer from the worker goroutine.
type transferScheduler interface {
	Enqueue(req TransferRequest) bool
}

// Materializer writes asset records for a completed image job. Persistence is
// synchronous and must succeed before the callback handler acknowledges the
// provider; the transfer of each file happens afterwards, out-of-band.
type Materializer struct {
	assets    domain.AssetRepository
	transfers transferScheduler
	provider  string
	logger    zerolog.Logger
}

// NewMaterializer wires the materializer. The provider label lands in each
// asset's provenance metadata.
func NewMaterializer(assets domain.AssetRepository, transfers transferScheduler, provider string, logger zerolog.Logger) *Materializer {
	return &Materializer{assets: assets, transfers: transfers, provider: provider, logger: logger}
}

// Materialize persists one asset per result URL and schedules its transfer.
// It returns the created asset ids. Any persistence error fails the whole
// completion; transfer scheduling failures do not.
func (m *Materializer) Materialize(ctx context.Context, job *domain.Job, resultURLs []string) ([]string, error) {
	var payload domain.ImageGenerationPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, fmt.Errorf("assets: decode job payload: %w", err)
		}
	}
	if payload.ProjectID == "" {
		return nil, fmt.Errorf("assets: job %s has no owning project", job.ID)
	}

	now := time.Now().UTC()
	assetIDs := make([]string, 0, len(resultURLs))
	for i, resultURL := range resultURLs {
		asset := &domain.Asset{
			ID:         uuid.NewString(),
			ProjectID:  payload.ProjectID,
			UserID:     payload.UserID,
			FileName:   fileNameFor(job.ID, resultURL, i),
			StorageURL: resultURL,
			Scope:      domain.AssetScopeProject,
			Metadata: map[string]any{
				"job_id":   job.ID,
				"provider": m.provider,
				"task_id":  job.ProviderTaskID,
				"transfer": string(domain.TransferStatePending),
			},
			CreatedAt: now,
		}
		if err := m.assets.Create(ctx, asset); err != nil {
			return nil, fmt.Errorf("assets: persist asset for %s: %w", job.ID, err)
		}
		assetIDs = append(assetIDs, asset.ID)
		if m.transfers != nil {
			m.transfers.Enqueue(TransferRequest{AssetID: asset.ID, SourceURL: resultURL})
		}
	}
	m.logger.Info().
		Str("job_id", job.ID).
		Int("count", len(assetIDs)).
		Msg("assets: materialized generation results")
	return assetIDs, nil
}

func fileNameFor(jobID, resultURL string, index int) string {
	ext := ".png"
	if parsed, err := url.Parse(resultURL); err == nil {
		if e := strings.ToLower(path.Ext(parsed.Path)); e != "" && len(e) <= 5 {
			ext = e
		}
	}
	return fmt.Sprintf("%s-%02d%s", jobID, index+1, ext)
}
