// Package queue provides the bounded in-memory queue of match jobs feeding
// the worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/negade/gebeya/pkg/metrics"
)

// defaultCapacity bounds the queue unless configured otherwise.
const defaultCapacity = 10000

// Job asks a worker to run matching for one buy request.
type Job struct {
	BuyRequestID string
	TriggeredBy  string // "request_created", "api_trigger", ...
	EnqueuedAt   time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. Returns false when the queue is full or closed.
	Enqueue(ctx context.Context, j Job) bool

	// Dequeue returns the channel workers receive jobs from. The channel
	// is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Job

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close shuts the queue down; no further jobs are accepted.
	Close() error

	// IsClosed reports whether the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a queue with the configured capacity.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a job without blocking; a full queue is backpressure, not
// an error.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.jobs <- j:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.jobs))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns the job channel.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Job {
	return q.jobs
}

// Len returns the number of queued jobs.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.jobs)
}

// Close shuts the queue down and closes the job channel so workers drain
// and exit.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.closed = true
	close(q.jobs)
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
