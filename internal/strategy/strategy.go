// Package strategy holds the type-specific behaviors that execute a job
// against an external AI capability. Text strategies complete synchronously;
// the image strategy only submits and hands back the provider task handle.
package strategy

import (
	"context"
	"encoding/json"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/genai"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/image"
)

// Outcome is what a strategy hands back to the worker loop. Exactly one of
// the two fields is set: Result for synchronous completion, ProviderTaskID
// for an asynchronous submission whose completion arrives via callback.
type Outcome struct {
	Result         json.RawMessage
	ProviderTaskID string
}

// Strategy executes one job payload.
type Strategy interface {
	Execute(ctx context.Context, job *domain.Job) (Outcome, error)
}

// TextGenerator is the synchronous text capability consumed by the content
// strategies.
type TextGenerator interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (*genai.TextResult, error)
	Model() string
}

// ImageSubmitter is the asynchronous image capability: submission only, no
// polling.
type ImageSubmitter interface {
	Submit(ctx context.Context, req image.SubmitRequest) (string, error)
	Model() string
}

// Registry maps job types to their strategies. The set is closed; the worker
// treats a miss as the job-level unknown-type failure.
type Registry map[domain.JobType]Strategy

// NewRegistry wires the default strategy set.
func NewRegistry(text TextGenerator, images ImageSubmitter) Registry {
	return Registry{
		domain.JobTypeContentGeneration:   NewContentGeneration(text),
		domain.JobTypeContentOptimization: NewContentOptimization(text),
		domain.JobTypeImageGeneration:     NewImageGeneration(images),
	}
}
