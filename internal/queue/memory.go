package queue

import (
	"container/heap"
	"context"
	"sync"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

type memoryEntry struct {
	jobID string
	rank  int
	seq   uint64
}

type entryHeap []memoryEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].rank != h[j].rank {
		return h[i].rank < h[j].rank
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(memoryEntry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// Memory is an in-process priority queue. It backs single-node deployments
// and lets the producer, worker and sweeper be exercised in tests without a
// Redis instance. Not shared across processes.
type Memory struct {
	mu   sync.Mutex
	heap entryHeap
	seq  uint64
}

// NewMemory constructs an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{}
}

// Push inserts an entry preserving priority plus FIFO order.
func (m *Memory) Push(ctx context.Context, priority domain.JobPriority, jobID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	heap.Push(&m.heap, memoryEntry{jobID: jobID, rank: priority.Rank(), seq: m.seq})
	return nil
}

// Pop removes and returns the head entry, or ErrEmpty.
func (m *Memory) Pop(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.heap.Len() == 0 {
		return "", ErrEmpty
	}
	entry := heap.Pop(&m.heap).(memoryEntry)
	return entry.jobID, nil
}

// Len reports the number of waiting entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heap.Len()
}

var _ Queue = (*Memory)(nil)
