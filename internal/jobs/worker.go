package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/queue"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/strategy"
)

// WorkerOptions carries the scheduling policy so timing is configuration,
// not code.
type WorkerOptions struct {
	PollInterval   time.Duration
	FailureBackoff time.Duration
}

// Worker is the long-running loop that drains the priority queue one job at
// a time. Synchronous strategies complete inside the loop; the image strategy
// only submits and leaves the record processing for the callback handler.
// A single job failure never stops the loop; only context cancellation does.
type Worker struct {
	queue          queue.Queue
	jobs           domain.JobRepository
	strategies     strategy.Registry
	logger         zerolog.Logger
	pollInterval   time.Duration
	failureBackoff time.Duration
	now            func() time.Time
}

// NewWorker wires a worker loop instance.
func NewWorker(q queue.Queue, jobs domain.JobRepository, strategies strategy.Registry, logger zerolog.Logger, opts WorkerOptions) *Worker {
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	failureBackoff := opts.FailureBackoff
	if failureBackoff <= 0 {
		failureBackoff = 10 * time.Second
	}
	return &Worker{
		queue:          q,
		jobs:           jobs,
		strategies:     strategies,
		logger:         logger,
		pollInterval:   pollInterval,
		failureBackoff: failureBackoff,
		now:            time.Now,
	}
}

// Run polls the queue until the context is cancelled. Shutdown is
// cooperative, checked at the top of each iteration; an in-flight job
// finishes its current step before the loop exits.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info().Msg("worker: started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker: stopping")
			return ctx.Err()
		default:
		}

		jobID, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				sleep(ctx, w.pollInterval)
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("worker: queue pop failed")
			sleep(ctx, w.pollInterval)
			continue
		}

		if err := w.processJob(ctx, jobID); err != nil {
			sleep(ctx, w.failureBackoff)
		}
	}
}

// processJob runs one popped job to its next stable state. The returned
// error only signals that the loop should back off; the job record itself
// has already been marked failed.
func (w *Worker) processJob(ctx context.Context, jobID string) error {
	job, err := w.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Queue entry without a record; drop it and let the
			// sweep handle the mirror case.
			w.logger.Warn().Str("job_id", jobID).Msg("worker: popped unknown job id")
			return nil
		}
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: load job failed")
		return err
	}

	claimed, err := w.jobs.MarkProcessing(ctx, jobID, w.now().UTC())
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: claim failed")
		return err
	}
	if !claimed {
		// Another instance claimed it, or a duplicate entry arrived
		// after the job already finished.
		w.logger.Debug().Str("job_id", jobID).Msg("worker: job not claimable, skipping")
		return nil
	}

	w.logger.Info().Str("job_id", jobID).Str("type", string(job.Type)).Msg("worker: picked job")

	strat, ok := w.strategies[job.Type]
	if !ok {
		w.fail(ctx, jobID, fmt.Sprintf("%v: %q", domain.ErrUnknownJobType, job.Type))
		return nil
	}

	outcome, err := strat.Execute(ctx, job)
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: job failed")
		w.fail(ctx, jobID, err.Error())
		return err
	}

	if outcome.ProviderTaskID != "" {
		if err := w.jobs.SetProviderTaskID(ctx, jobID, outcome.ProviderTaskID); err != nil {
			// Submission succeeded but the handle is lost, so the
			// callback could never match; surface it on the record.
			w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: store task handle failed")
			w.fail(ctx, jobID, fmt.Sprintf("store provider task handle: %v", err))
			return err
		}
		w.logger.Info().
			Str("job_id", jobID).
			Str("task_id", outcome.ProviderTaskID).
			Msg("worker: submitted async task, awaiting callback")
		return nil
	}

	completed, err := w.jobs.Complete(ctx, jobID, outcome.Result, w.now().UTC())
	if err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: complete failed")
		return err
	}
	if !completed {
		w.logger.Warn().Str("job_id", jobID).Msg("worker: job no longer processing, result dropped")
		return nil
	}
	w.logger.Info().Str("job_id", jobID).Msg("worker: job completed")
	return nil
}

func (w *Worker) fail(ctx context.Context, jobID, message string) {
	if _, err := w.jobs.Fail(ctx, jobID, message, w.now().UTC()); err != nil {
		w.logger.Error().Err(err).Str("job_id", jobID).Msg("worker: mark failed errored")
	}
}

// sleep waits for the duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
