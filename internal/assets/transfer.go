package assets

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/storage"
)

// TransferRequest asks for one asset's backing file to be moved from the
// provider's ephemeral URL to permanent storage.
type TransferRequest struct {
	AssetID   string
	SourceURL string
}

// TransferWorker relocates asset files out-of-band. It is fire and forget:
// nothing in the request path waits on it, and a failed transfer leaves the
// asset valid at its original URL. Failures surface only through logs and
// asset metadata.
type TransferWorker struct {
	store    storage.ObjectStore
	assets   domain.AssetRepository
	logger   zerolog.Logger
	requests chan TransferRequest
}

// NewTransferWorker sizes the request channel; a full channel drops new
// requests rather than blocking the completion path.
func NewTransferWorker(store storage.ObjectStore, assets domain.AssetRepository, logger zerolog.Logger, queueSize int) *TransferWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &TransferWorker{
		store:    store,
		assets:   assets,
		logger:   logger,
		requests: make(chan TransferRequest, queueSize),
	}
}

// Enqueue schedules a transfer without blocking. The return value reports
// whether the request was accepted; callers only log a drop.
func (w *TransferWorker) Enqueue(req TransferRequest) bool {
	select {
	case w.requests <- req:
		return true
	default:
		w.logger.Warn().
			Str("asset_id", req.AssetID).
			Msg("transfer: queue full, keeping ephemeral url")
		return false
	}
}

// Run consumes transfer requests until the context is cancelled.
func (w *TransferWorker) Run(ctx context.Context) {
	w.logger.Info().Msg("transfer: worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("transfer: worker stopped")
			return
		case req := <-w.requests:
			w.process(ctx, req)
		}
	}
}

func (w *TransferWorker) process(ctx context.Context, req TransferRequest) {
	permanentURL, err := w.store.Store(ctx, req.SourceURL)
	if err != nil {
		w.logger.Warn().Err(err).
			Str("asset_id", req.AssetID).
			Msg("transfer: relocation failed, keeping ephemeral url")
		if markErr := w.assets.MarkTransferFailed(ctx, req.AssetID, err.Error()); markErr != nil {
			w.logger.Error().Err(markErr).Str("asset_id", req.AssetID).Msg("transfer: record failure state")
		}
		return
	}
	if err := w.assets.MarkTransferred(ctx, req.AssetID, permanentURL); err != nil {
		w.logger.Error().Err(err).Str("asset_id", req.AssetID).Msg("transfer: update storage url")
		return
	}
	w.logger.Info().
		Str("asset_id", req.AssetID).
		Str("url", permanentURL).
		Msg("transfer: asset moved to permanent storage")
}
