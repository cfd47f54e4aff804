package strategy

import (
	"context"
	"fmt"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/providers/image"
)

// ImageGeneration submits an asynchronous synthesis task to the external
// provider and returns its task handle. It performs no polling; the finished
// result arrives through the callback handler.
type ImageGeneration struct {
	client ImageSubmitter
}

// NewImageGeneration wires the strategy to an image capability.
func NewImageGeneration(client ImageSubmitter) *ImageGeneration {
	return &ImageGeneration{client: client}
}

// Execute fulfils the Strategy interface.
func (s *ImageGeneration) Execute(ctx context.Context, job *domain.Job) (Outcome, error) {
	var payload domain.ImageGenerationPayload
	if err := unmarshalPayload(job.Payload, &payload); err != nil {
		return Outcome{}, err
	}
	taskID, err := s.client.Submit(ctx, image.SubmitRequest{
		Prompt:    payload.Prompt,
		Style:     payload.Style,
		Size:      payload.Size,
		Quantity:  payload.Quantity,
		RequestID: job.ID,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("image generation: %w: %v", domain.ErrProviderFailure, err)
	}
	return Outcome{ProviderTaskID: taskID}, nil
}
