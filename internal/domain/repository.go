package domain

import (
	"context"
	"time"
)

// JobRepository defines persistence for job records. Mutating methods that
// represent lifecycle transitions are conditional: they report false when the
// record was not in the expected prior state, which keeps duplicate webhook
// deliveries and racing workers from rewinding a terminal status.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	GetByProviderTaskID(ctx context.Context, taskID string) (*Job, error)

	// MarkProcessing claims a queued job for a worker.
	MarkProcessing(ctx context.Context, jobID string, at time.Time) (bool, error)
	// SetProviderTaskID records the external task handle once; the mapping
	// is write-once and unique.
	SetProviderTaskID(ctx context.Context, jobID, taskID string) error
	// Complete transitions processing -> completed with the result payload.
	Complete(ctx context.Context, jobID string, result []byte, at time.Time) (bool, error)
	// Fail transitions a non-terminal job to failed with an error message.
	Fail(ctx context.Context, jobID, message string, at time.Time) (bool, error)

	// ListStuckQueued returns jobs still queued since before the cutoff,
	// used by the reconciliation sweep for orphaned records.
	ListStuckQueued(ctx context.Context, cutoff time.Time, limit int) ([]Job, error)
}

// AssetRepository handles persistence for generated assets.
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	GetByID(ctx context.Context, assetID string) (*Asset, error)
	ListByJobID(ctx context.Context, jobID string) ([]Asset, error)

	// MarkTransferred replaces the storage URL with the permanent one.
	MarkTransferred(ctx context.Context, assetID, permanentURL string) error
	// MarkTransferFailed records the failure without touching the URL.
	MarkTransferFailed(ctx context.Context, assetID, reason string) error
}
