package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/queue"
	"github.com/dhsg225/marketing-saas-platform-sub004/internal/strategy"
)

func TestSweepOnceReenqueuesStuckJobs(t *testing.T) {
	repo := newMemJobRepo()
	q := queue.NewMemory()
	s := NewSweeper(repo, q, testLogger(), time.Minute, 10*time.Minute)

	stale := queuedJob("job_20_stale", domain.JobTypeContentGeneration)
	stale.CreatedAt = time.Now().UTC().Add(-time.Hour)
	repo.Create(context.Background(), stale)

	fresh := queuedJob("job_21_fresh", domain.JobTypeContentGeneration)
	repo.Create(context.Background(), fresh)

	running := queuedJob("job_22_running", domain.JobTypeContentGeneration)
	running.CreatedAt = time.Now().UTC().Add(-time.Hour)
	running.Status = domain.JobStatusProcessing
	repo.Create(context.Background(), running)

	pushed, err := s.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce returned error: %v", err)
	}
	if pushed != 1 {
		t.Fatalf("pushed = %d, want 1", pushed)
	}
	id, err := q.Pop(context.Background())
	if err != nil {
		t.Fatalf("Pop returned error: %v", err)
	}
	if id != "job_20_stale" {
		t.Fatalf("re-enqueued %q, want job_20_stale", id)
	}
	if _, err := q.Pop(context.Background()); err != queue.ErrEmpty {
		t.Fatalf("queue not empty after sweep: %v", err)
	}
}

func TestSweepDuplicateDeliveryIsHarmless(t *testing.T) {
	repo := newMemJobRepo()
	q := queue.NewMemory()
	s := NewSweeper(repo, q, testLogger(), time.Minute, 10*time.Minute)

	job := queuedJob("job_23_dup", domain.JobTypeContentGeneration)
	job.CreatedAt = time.Now().UTC().Add(-time.Hour)
	repo.Create(context.Background(), job)
	q.Push(context.Background(), job.Priority, job.ID)

	if _, err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce returned error: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("queue length = %d, want duplicate entries", q.Len())
	}

	// First delivery claims, second is skipped by the conditional claim.
	w := newTestWorker(repo, q, strategy.Registry{})
	id, _ := q.Pop(context.Background())
	claimed, err := repo.MarkProcessing(context.Background(), id, time.Now().UTC())
	if err != nil || !claimed {
		t.Fatalf("first claim failed: claimed=%v err=%v", claimed, err)
	}
	id, _ = q.Pop(context.Background())
	if err := w.processJob(context.Background(), id); err != nil {
		t.Fatalf("duplicate delivery caused backoff: %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), job.ID)
	if stored.Status != domain.JobStatusProcessing {
		t.Fatalf("status = %q, want processing", stored.Status)
	}
}
