package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

// JobRepositoryPG implements domain.JobRepository. Lifecycle transitions use
// conditional updates so concurrent writers can never rewind a terminal
// status; callers learn via the returned bool whether their transition won.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	query := `
INSERT INTO jobs (id, type, priority, status, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Type,
		job.Priority,
		job.Status,
		job.Payload,
		job.CreatedAt,
	)
	return err
}

const jobColumns = `
SELECT id, type, priority, status, payload, result, COALESCE(error_message, ''),
       COALESCE(provider_task_id, ''), created_at, started_at, completed_at, failed_at
FROM jobs
`

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx, jobColumns+`WHERE id = $1;`, jobID)
	return scanJob(row)
}

// GetByProviderTaskID maps an external task handle back to its job. The
// provider_task_id column carries a unique index, so the mapping is
// one-to-one.
func (r *JobRepositoryPG) GetByProviderTaskID(ctx context.Context, taskID string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx, jobColumns+`WHERE provider_task_id = $1;`, taskID)
	return scanJob(row)
}

// MarkProcessing claims a queued job for a worker.
func (r *JobRepositoryPG) MarkProcessing(ctx context.Context, jobID string, at time.Time) (bool, error) {
	query := `
UPDATE jobs
SET status = $2, started_at = $3
WHERE id = $1 AND status = $4;
`
	tag, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusProcessing, at, domain.JobStatusQueued)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetProviderTaskID records the external task handle. Write-once: a second
// write for the same job is rejected.
func (r *JobRepositoryPG) SetProviderTaskID(ctx context.Context, jobID, taskID string) error {
	query := `
UPDATE jobs
SET provider_task_id = $2
WHERE id = $1 AND provider_task_id IS NULL;
`
	tag, err := r.pool.Exec(ctx, query, jobID, taskID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrNotFound
	}
	return nil
}

// Complete transitions processing -> completed with the result payload.
func (r *JobRepositoryPG) Complete(ctx context.Context, jobID string, result []byte, at time.Time) (bool, error) {
	query := `
UPDATE jobs
SET status = $2, result = $3, completed_at = $4
WHERE id = $1 AND status = $5;
`
	tag, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusCompleted, nullableBytes(result), at, domain.JobStatusProcessing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Fail transitions a non-terminal job to failed with an error message.
func (r *JobRepositoryPG) Fail(ctx context.Context, jobID, message string, at time.Time) (bool, error) {
	query := `
UPDATE jobs
SET status = $2, error_message = $3, failed_at = $4
WHERE id = $1 AND status IN ($5, $6);
`
	tag, err := r.pool.Exec(ctx, query, jobID, domain.JobStatusFailed, message, at, domain.JobStatusQueued, domain.JobStatusProcessing)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListStuckQueued returns jobs still queued since before the cutoff, oldest
// first, for the reconciliation sweep.
func (r *JobRepositoryPG) ListStuckQueued(ctx context.Context, cutoff time.Time, limit int) ([]domain.Job, error) {
	rows, err := r.pool.Query(ctx, jobColumns+`
WHERE status = $1 AND created_at < $2
ORDER BY created_at ASC
LIMIT $3;
`, domain.JobStatusQueued, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(
		&job.ID,
		&job.Type,
		&job.Priority,
		&job.Status,
		&job.Payload,
		&job.Result,
		&job.ErrorMessage,
		&job.ProviderTaskID,
		&job.CreatedAt,
		&job.StartedAt,
		&job.CompletedAt,
		&job.FailedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
