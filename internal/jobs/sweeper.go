package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/queue"
)

const sweepBatchLimit = 100

// Sweeper reconciles orphaned job records: a crash between record creation
// and enqueue leaves a job queued forever with no queue entry. The sweep
// re-pushes anything queued beyond the timeout. Re-pushing a job whose entry
// still exists is harmless because the worker's claim is conditional, so a
// duplicate pop is skipped.
type Sweeper struct {
	jobs     domain.JobRepository
	queue    queue.Queue
	logger   zerolog.Logger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
}

// NewSweeper wires a sweeper instance.
func NewSweeper(jobs domain.JobRepository, q queue.Queue, logger zerolog.Logger, interval, timeout time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Sweeper{
		jobs:     jobs,
		queue:    q,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
	}
}

// Run sweeps periodically until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info().Dur("interval", s.interval).Msg("sweeper: started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweeper: stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error().Err(err).Msg("sweeper: sweep failed")
			}
		}
	}
}

// SweepOnce re-enqueues jobs stuck in queued beyond the timeout and returns
// how many it pushed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.timeout)
	stuck, err := s.jobs.ListStuckQueued(ctx, cutoff, sweepBatchLimit)
	if err != nil {
		return 0, err
	}
	pushed := 0
	for _, job := range stuck {
		if err := s.queue.Push(ctx, job.Priority, job.ID); err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("sweeper: re-enqueue failed")
			continue
		}
		pushed++
		s.logger.Warn().
			Str("job_id", job.ID).
			Time("created_at", job.CreatedAt).
			Msg("sweeper: re-enqueued stuck job")
	}
	return pushed, nil
}
