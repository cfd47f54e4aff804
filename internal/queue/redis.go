package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dhsg225/marketing-saas-platform-sub004/internal/domain"
)

const (
	defaultQueueKey = "jobs:queue"

	// rankStride leaves room for ~one trillion enqueues per priority tier
	// before sequence numbers could bleed into the next rank band.
	rankStride = float64(1 << 40)
)

// Redis is the shared priority queue used when multiple worker instances run
// against the same deployment. Entries live in a sorted set whose score
// encodes (priority rank, enqueue sequence); ZPOPMIN gives an atomic,
// exclusive pop across instances.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis wraps an existing client. An empty key selects the default.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = defaultQueueKey
	}
	return &Redis{client: client, key: key}
}

// Push inserts the job id with a score preserving priority + FIFO order. The
// sequence counter is shared via INCR so ordering holds across producers.
func (q *Redis) Push(ctx context.Context, priority domain.JobPriority, jobID string) error {
	seq, err := q.client.Incr(ctx, q.key+":seq").Result()
	if err != nil {
		return fmt.Errorf("queue: next sequence: %w", err)
	}
	score := entryScore(priority.Rank(), seq)
	if err := q.client.ZAdd(ctx, q.key, redis.Z{Score: score, Member: jobID}).Err(); err != nil {
		return fmt.Errorf("queue: push %s: %w", jobID, err)
	}
	return nil
}

// Pop atomically removes and returns the lowest-scored entry, or ErrEmpty.
func (q *Redis) Pop(ctx context.Context) (string, error) {
	entries, err := q.client.ZPopMin(ctx, q.key, 1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmpty
		}
		return "", fmt.Errorf("queue: pop: %w", err)
	}
	if len(entries) == 0 {
		return "", ErrEmpty
	}
	jobID, ok := entries[0].Member.(string)
	if !ok {
		return "", fmt.Errorf("queue: unexpected member %v", entries[0].Member)
	}
	return jobID, nil
}

func entryScore(rank int, seq int64) float64 {
	return float64(rank)*rankStride + float64(seq)
}

var _ Queue = (*Redis)(nil)
