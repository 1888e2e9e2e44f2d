// Package pending coalesces duplicate match triggers: while a buy request
// already sits in the job queue, further triggers for it are dropped.
package pending

import (
	"context"
	"sync"
)

// Tracker records buy request ids with a queued match job.
type Tracker interface {
	// SeenAndRecord atomically checks whether id is already pending and
	// records it if not. Returns true when id was already pending.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes id from the pending set. Called when a worker picks
	// the job up, so triggers arriving mid-run schedule a fresh pass, and
	// when an enqueue fails after recording.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of currently pending ids.
	Size() int
}

// tracker is the mutex-guarded in-memory implementation. Entries are
// removed as jobs are picked up, so the set never outgrows the job queue
// and needs no eviction policy.
type tracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() Tracker {
	return &tracker{pending: make(map[string]struct{})}
}

func (t *tracker) SeenAndRecord(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.pending[id]; ok {
		return true
	}
	t.pending[id] = struct{}{}
	return false
}

func (t *tracker) Unrecord(ctx context.Context, id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

func (t *tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
