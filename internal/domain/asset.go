package domain

import "time"

// AssetScope declares who owns a generated asset.
type AssetScope string

const (
	AssetScopeProject      AssetScope = "project"
	AssetScopeUser         AssetScope = "user"
	AssetScopeOrganization AssetScope = "organization"
)

// TransferState tracks the best-effort relocation of an asset's backing file
// from provider-hosted storage to permanent storage.
type TransferState string

const (
	TransferStatePending   TransferState = "pending"
	TransferStatePermanent TransferState = "permanent"
	TransferStateFailed    TransferState = "failed"
)

// Asset is a persisted reference to generated output owned by a project.
// StorageURL starts as the provider's ephemeral URL and is replaced in place
// exactly once if the background transfer succeeds. On transfer failure the
// ephemeral URL remains the serving contract.
type Asset struct {
	ID         string
	ProjectID  string
	UserID     string
	FileName   string
	StorageURL string
	Scope      AssetScope
	Metadata   map[string]any
	CreatedAt  time.Time
}
