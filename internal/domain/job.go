package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobType enumerates supported generation job categories.
type JobType string

const (
	JobTypeContentGeneration   JobType = "content-generation"
	JobTypeContentOptimization JobType = "content-optimization"
	JobTypeImageGeneration     JobType = "image-generation"
)

// ParseJobType validates a caller-supplied type string.
func ParseJobType(raw string) (JobType, error) {
	switch t := JobType(strings.TrimSpace(raw)); t {
	case JobTypeContentGeneration, JobTypeContentOptimization, JobTypeImageGeneration:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown job type %q", ErrValidation, raw)
	}
}

// JobPriority orders jobs within the shared queue.
type JobPriority string

const (
	JobPriorityHigh   JobPriority = "high"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityLow    JobPriority = "low"
)

// Rank maps a priority to its queue rank. Lower ranks dequeue first.
func (p JobPriority) Rank() int {
	switch p {
	case JobPriorityHigh:
		return 1
	case JobPriorityMedium:
		return 2
	default:
		return 3
	}
}

// ParseJobPriority validates a caller-supplied priority. An empty value
// defaults to medium.
func ParseJobPriority(raw string) (JobPriority, error) {
	switch p := JobPriority(strings.TrimSpace(raw)); p {
	case "":
		return JobPriorityMedium, nil
	case JobPriorityHigh, JobPriorityMedium, JobPriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, raw)
	}
}

// JobStatus enumerates job lifecycle states. Transitions are monotonic:
// queued -> processing -> completed|failed.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a job in this status can no longer move.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one unit of AI work accepted from a caller, tracked end-to-end by a
// unique id. The record is created by the producer and mutated by exactly one
// of the worker loop (synchronous types) or the completion callback handler
// (image jobs) at any point in its lifecycle.
type Job struct {
	ID             string
	Type           JobType
	Priority       JobPriority
	Status         JobStatus
	Payload        json.RawMessage
	Result         json.RawMessage
	ErrorMessage   string
	ProviderTaskID string
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	FailedAt       *time.Time
}

// NewJobID issues a time-ordered identifier with a random suffix, so ids sort
// roughly by creation time while staying globally unique.
func NewJobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("job_%d_%s", now.UnixMilli(), suffix)
}
