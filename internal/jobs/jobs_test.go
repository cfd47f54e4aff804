package jobs

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

// memJobRepo mirrors the conditional-transition semantics of the Postgres
// repository so the producer, worker and sweeper can be tested together.
type memJobRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Job
	byTask  map[string]string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{
		records: make(map[string]*domain.Job),
		byTask:  make(map[string]string),
	}
}

func (m *memJobRepo) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *job
	m.records[job.ID] = &copied
	return nil
}

func (m *memJobRepo) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (m *memJobRepo) GetByProviderTaskID(ctx context.Context, taskID string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobID, ok := m.byTask[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *m.records[jobID]
	return &copied, nil
}

func (m *memJobRepo) MarkProcessing(ctx context.Context, jobID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok || job.Status != domain.JobStatusQueued {
		return false, nil
	}
	job.Status = domain.JobStatusProcessing
	started := at
	job.StartedAt = &started
	return true, nil
}

func (m *memJobRepo) SetProviderTaskID(ctx context.Context, jobID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok || job.ProviderTaskID != "" {
		return domain.ErrNotFound
	}
	job.ProviderTaskID = taskID
	m.byTask[taskID] = jobID
	return nil
}

func (m *memJobRepo) Complete(ctx context.Context, jobID string, result []byte, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok || job.Status != domain.JobStatusProcessing {
		return false, nil
	}
	job.Status = domain.JobStatusCompleted
	job.Result = result
	completed := at
	job.CompletedAt = &completed
	return true, nil
}

func (m *memJobRepo) Fail(ctx context.Context, jobID, message string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.records[jobID]
	if !ok || job.Status.Terminal() {
		return false, nil
	}
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = message
	failed := at
	job.FailedAt = &failed
	return true, nil
}

func (m *memJobRepo) ListStuckQueued(ctx context.Context, cutoff time.Time, limit int) ([]domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Job
	for _, job := range m.records {
		if job.Status == domain.JobStatusQueued && job.CreatedAt.Before(cutoff) {
			out = append(out, *job)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

var _ domain.JobRepository = (*memJobRepo)(nil)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
