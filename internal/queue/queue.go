// Package queue provides the shared ordered structure holding job ids that
// await execution. Entries dequeue strictly by ascending priority rank, ties
// broken by enqueue order. The queue holds only identifiers; the job store is
// the source of truth for content.
package queue

import (
	"context"
	"errors"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

// ErrEmpty is the sentinel returned by Pop when no entry is available. The
// worker loop applies its own wait policy on top; the queue never blocks.
var ErrEmpty = errors.New("queue: empty")

// Queue is the producer/worker contract. Push may be called by many
// concurrent producers; Pop must be atomic so two worker instances never
// receive the same entry.
type Queue interface {
	Push(ctx context.Context, priority domain.JobPriority, jobID string) error
	Pop(ctx context.Context) (string, error)
}
