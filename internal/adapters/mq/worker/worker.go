// Package worker runs queued match jobs: each job triggers one
// orchestrator run and dispatches the resulting notification intents.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/negade/gebeya/internal/adapters/mq/queue"
	"github.com/negade/gebeya/internal/domain/match"
	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/pkg/logger"
	"github.com/negade/gebeya/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Matcher runs matching for one buy request.
type Matcher interface {
	Match(ctx context.Context, buyRequestID string) (match.Run, error)
}

// Emitter dispatches a notification intent.
type Emitter interface {
	Emit(ctx context.Context, intent model.NotificationIntent) error
}

// Tracker releases the pending mark for a request once its job is picked
// up.
type Tracker interface {
	Unrecord(ctx context.Context, id string)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker consumes jobs until its context is cancelled or it is shut down.
type Worker struct {
	queue   Queue
	matcher Matcher
	emitter Emitter
	tracker Tracker
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewWorker creates a worker with configuration options.
func NewWorker(q Queue, m Matcher, e Emitter, t Tracker, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		matcher:  m,
		emitter:  e,
		tracker:  t,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the worker loop.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "job failed", logger.Error(err))
			}
		}
	}
}

// signalShutdown closes the shutdown channel exactly once.
func (w *Worker) signalShutdown() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

// Shutdown gracefully stops the worker.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.signalShutdown()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob runs matching for the job's buy request and dispatches the
// returned intents. The pending mark is released before the run starts so
// triggers arriving mid-run schedule a fresh pass.
func (w *Worker) processJob(ctx context.Context, job queue.Job) error {
	if w.tracker != nil {
		w.tracker.Unrecord(ctx, job.BuyRequestID)
	}

	run, err := w.matcher.Match(ctx, job.BuyRequestID)
	if err != nil {
		metrics.RecordWorkerRunError()
		return fmt.Errorf("matching %s: %w", job.BuyRequestID, err)
	}

	for _, intent := range run.Intents {
		if err := w.emitter.Emit(ctx, intent); err != nil {
			// Fire-and-forget: a delivery handoff failure never fails
			// the run.
			metrics.RecordIntentEmitError()
			w.logger.Warn(ctx, "intent emission failed",
				logger.String("recipient", intent.RecipientID),
				logger.String("matchID", intent.Metadata.MatchID),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordIntentEmitted()
	}

	w.logger.Debug(ctx, "job processed",
		logger.String("buyRequestID", job.BuyRequestID),
		logger.String("triggeredBy", job.TriggeredBy),
		logger.Int("matches", len(run.Matches)),
	)
	return nil
}

// Pool manages a fixed set of workers.
type Pool struct {
	workers []*Worker
	logger  logger.Logger
}

// NewPool creates workerCount workers over the shared queue.
func NewPool(workerCount int, q Queue, m Matcher, e Emitter, t Tracker) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewWorker(q, m, e, t, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.signalShutdown()
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown stops the pool within the pool shutdown timeout.
func (p *Pool) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		w.signalShutdown()
	}
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
