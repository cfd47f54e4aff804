package repo

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

// AssetRepositoryPG implements domain.AssetRepository using PostgreSQL.
type AssetRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAssetRepository constructs a new asset repository instance.
func NewAssetRepository(pool *pgxpool.Pool) *AssetRepositoryPG {
	return &AssetRepositoryPG{pool: pool}
}

// Create persists a new asset record.
func (r *AssetRepositoryPG) Create(ctx context.Context, asset *domain.Asset) error {
	metadata, err := json.Marshal(asset.Metadata)
	if err != nil {
		return err
	}
	query := `
INSERT INTO assets (id, project_id, user_id, file_name, storage_url, scope, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err = r.pool.Exec(ctx, query,
		asset.ID,
		asset.ProjectID,
		asset.UserID,
		asset.FileName,
		asset.StorageURL,
		asset.Scope,
		metadata,
		asset.CreatedAt,
	)
	return err
}

const assetColumns = `
SELECT id, project_id, COALESCE(user_id, ''), file_name, storage_url, scope, metadata, created_at
FROM assets
`

// GetByID fetches one asset.
func (r *AssetRepositoryPG) GetByID(ctx context.Context, assetID string) (*domain.Asset, error) {
	row := r.pool.QueryRow(ctx, assetColumns+`WHERE id = $1;`, assetID)
	return scanAsset(row)
}

// ListByJobID returns all assets whose provenance points at the job.
func (r *AssetRepositoryPG) ListByJobID(ctx context.Context, jobID string) ([]domain.Asset, error) {
	rows, err := r.pool.Query(ctx, assetColumns+`
WHERE metadata->>'job_id' = $1
ORDER BY created_at ASC;
`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

// MarkTransferred replaces the storage URL with the permanent one and tags
// the metadata accordingly.
func (r *AssetRepositoryPG) MarkTransferred(ctx context.Context, assetID, permanentURL string) error {
	query := `
UPDATE assets
SET storage_url = $2,
    metadata = metadata || jsonb_build_object('transfer', 'permanent')
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, assetID, permanentURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkTransferFailed records the failure; the ephemeral URL stays in place.
func (r *AssetRepositoryPG) MarkTransferFailed(ctx context.Context, assetID, reason string) error {
	query := `
UPDATE assets
SET metadata = metadata || jsonb_build_object('transfer', 'failed', 'transfer_error', $2::text)
WHERE id = $1;
`
	tag, err := r.pool.Exec(ctx, query, assetID, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var asset domain.Asset
	var metadata []byte
	if err := row.Scan(
		&asset.ID,
		&asset.ProjectID,
		&asset.UserID,
		&asset.FileName,
		&asset.StorageURL,
		&asset.Scope,
		&metadata,
		&asset.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &asset.Metadata); err != nil {
			return nil, err
		}
	}
	return &asset, nil
}
