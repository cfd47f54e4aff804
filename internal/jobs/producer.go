// Package jobs contains the production and execution pipeline for AI
// generation work: the producer that accepts requests, the worker loop that
// executes them, and the sweeper that reconciles orphaned records.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/queue"
)

// SubmitRequest is the inbound producer contract. Payload stays opaque to the
// queue; only the producer inspects it for validation.
type SubmitRequest struct {
	Type     string          `json:"type"`
	Priority string          `json:"priority"`
	Payload  json.RawMessage `json:"payload"`
}

// Producer accepts generation requests, validates them, and makes the job
// reachable: one job record plus one queue entry per accepted request. The
// caller gets an acknowledgment, never the result.
type Producer struct {
	jobs     domain.JobRepository
	queue    queue.Queue
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// NewProducer wires the producer against its store and queue.
func NewProducer(jobs domain.JobRepository, q queue.Queue, logger zerolog.Logger) *Producer {
	return &Producer{
		jobs:     jobs,
		queue:    q,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates and enqueues one job. Validation failures reject the
// request before any state mutation. Record creation and enqueue are one
// logical unit: if the push fails after the record was written, the record
// stays queued and the sweeper re-enqueues it.
func (p *Producer) Submit(ctx context.Context, req SubmitRequest) (*domain.Job, error) {
	jobType, err := domain.ParseJobType(req.Type)
	if err != nil {
		return nil, err
	}
	priority, err := domain.ParseJobPriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if err := p.validatePayload(jobType, req.Payload); err != nil {
		return nil, err
	}

	now := p.now().UTC()
	job := &domain.Job{
		ID:        domain.NewJobID(now),
		Type:      jobType,
		Priority:  priority,
		Status:    domain.JobStatusQueued,
		Payload:   req.Payload,
		CreatedAt: now,
	}
	if err := p.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("producer: create job record: %w", err)
	}
	if err := p.queue.Push(ctx, priority, job.ID); err != nil {
		return nil, fmt.Errorf("producer: enqueue %s: %w", job.ID, err)
	}
	p.logger.Info().
		Str("job_id", job.ID).
		Str("type", string(jobType)).
		Str("priority", string(priority)).
		Msg("producer: job accepted")
	return job, nil
}

func (p *Producer) validatePayload(jobType domain.JobType, raw json.RawMessage) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: payload is required", domain.ErrValidation)
	}
	var target any
	switch jobType {
	case domain.JobTypeContentGeneration:
		target = &domain.ContentGenerationPayload{}
	case domain.JobTypeContentOptimization:
		target = &domain.ContentOptimizationPayload{}
	case domain.JobTypeImageGeneration:
		target = &domain.ImageGenerationPayload{}
	default:
		return fmt.Errorf("%w: unknown job type %q", domain.ErrValidation, jobType)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode payload: %v", domain.ErrValidation, err)
	}
	if err := p.validate.Struct(target); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return fmt.Errorf("%w: missing or invalid field %q", domain.ErrValidation, fields[0].Field())
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}
