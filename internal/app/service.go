// Package service wires the matching engine: store, scorer, orchestrator,
// batch re-matcher, trigger queue, workers and the intent emitter.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/negade/gebeya/internal/adapters/mq/queue"
	workerpool "github.com/negade/gebeya/internal/adapters/mq/worker"
	"github.com/negade/gebeya/internal/adapters/notify"
	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/match"
	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/internal/domain/pending"
	"github.com/negade/gebeya/internal/domain/reason"
	"github.com/negade/gebeya/internal/domain/scoring"
	"github.com/negade/gebeya/pkg/logger"
	"github.com/negade/gebeya/pkg/metrics"
)

// Trigger sources recorded on queued jobs.
const (
	TriggerRequestCreated = "request_created"
	TriggerAPI            = "api_trigger"
)

// Service implements the dependencies required by the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Injected collaborators.
	store   repository.Store
	emitter notify.Emitter

	// Core components, built on Start.
	matcher  *match.Matcher
	batch    *match.Batch
	jobQueue queue.Queue
	pool     *workerpool.Pool
	tracker  pending.Tracker

	// Configuration.
	workerCount      int
	queueSize        int
	batchParallelism int
	threshold        int
	storeTimeout     time.Duration
	weights          scoring.Weights

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration. Without WithStore
// it falls back to the in-memory store; the emitter defaults to logging.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      4,
		queueSize:        10_000,
		batchParallelism: 4,
		threshold:        match.DefaultThreshold,
		storeTimeout:     5 * time.Second,
		weights:          scoring.DefaultWeights(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and starts the engine components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "no store injected; using in-memory store")
	}
	if s.emitter == nil {
		s.emitter = notify.NewLogEmitter()
	}

	scorer := scoring.NewScorer(scoring.WithWeights(s.weights))
	s.matcher = match.NewMatcher(s.store,
		match.WithScorer(scorer),
		match.WithComposer(reason.NewComposer()),
		match.WithThreshold(s.threshold),
		match.WithStoreTimeout(s.storeTimeout),
	)
	s.batch = match.NewBatch(s.matcher, match.WithParallelism(s.batchParallelism))
	s.tracker = pending.NewTracker()
	s.jobQueue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.matcher, s.emitter, s.tracker)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "match engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("threshold", s.threshold),
	)
	return nil
}

// Stop gracefully shuts the engine down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping match engine...")

	// Closing the queue lets workers drain the backlog before stopping.
	_ = s.jobQueue.Close()
	if s.pool != nil {
		s.pool.Stop()
	}
	if closer, ok := s.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if closer, ok := s.emitter.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "match engine stopped")
}

// TriggerMatch queues a matching run for the buy request. Returns
// (queued, duplicate): duplicate means a job for the request is already
// waiting and the trigger was coalesced; !queued && !duplicate means
// backpressure.
func (s *Service) TriggerMatch(ctx context.Context, buyRequestID, triggeredBy string) (queued, duplicate bool) {
	if s.tracker.SeenAndRecord(ctx, buyRequestID) {
		metrics.RecordTriggerCoalesced()
		s.logger.Debug(ctx, "trigger coalesced; request already queued",
			logger.String("buyRequestID", buyRequestID))
		return false, true
	}

	ok := s.jobQueue.Enqueue(ctx, queue.Job{
		BuyRequestID: buyRequestID,
		TriggeredBy:  triggeredBy,
		EnqueuedAt:   time.Now(),
	})
	if !ok {
		// Roll back the pending mark so a later trigger can retry.
		s.tracker.Unrecord(ctx, buyRequestID)
		return false, false
	}
	metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	return true, false
}

// MatchNow runs the orchestrator synchronously and dispatches intents.
// Used by callers that need the created matches in the response.
func (s *Service) MatchNow(ctx context.Context, buyRequestID string) (match.Run, error) {
	run, err := s.matcher.Match(ctx, buyRequestID)
	if err != nil {
		return run, err
	}
	s.dispatchIntents(ctx, run.Intents)
	return run, nil
}

// RematchAll sweeps every active buy request and dispatches intents for
// the newly created matches.
func (s *Service) RematchAll(ctx context.Context) ([]match.Summary, error) {
	summaries, err := s.batch.RunAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, sum := range summaries {
		s.dispatchIntents(ctx, sum.Intents)
	}
	return summaries, nil
}

func (s *Service) dispatchIntents(ctx context.Context, intents []model.NotificationIntent) {
	for _, intent := range intents {
		if err := s.emitter.Emit(ctx, intent); err != nil {
			metrics.RecordIntentEmitError()
			s.logger.Warn(ctx, "intent emission failed",
				logger.String("recipient", intent.RecipientID),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordIntentEmitted()
	}
}

// CreateBuyRequest persists a buy request and triggers matching for it in
// the background.
func (s *Service) CreateBuyRequest(ctx context.Context, r model.BuyRequest) (model.BuyRequest, error) {
	created, err := s.store.CreateBuyRequest(ctx, r)
	if err != nil {
		return model.BuyRequest{}, err
	}
	// Matching runs out of band; creation never waits for it.
	s.TriggerMatch(ctx, created.ID, TriggerRequestCreated)
	return created, nil
}

// CreateListing persists a listing.
func (s *Service) CreateListing(ctx context.Context, l model.Listing) (model.Listing, error) {
	return s.store.CreateListing(ctx, l)
}

// RespondToMatch records the actor's accept or reject decision on a
// PENDING match. Accepting emits a notification intent inviting the
// other party to negotiate; rejecting stays silent.
func (s *Service) RespondToMatch(ctx context.Context, matchID, actorID string, status model.MatchStatus) (model.Match, error) {
	updated, err := s.store.UpdateMatchStatus(ctx, matchID, actorID, status)
	if err != nil {
		return model.Match{}, err
	}
	metrics.RecordMatchDecision(string(status))
	s.logger.Info(ctx, "match decision recorded",
		logger.String("matchID", matchID),
		logger.String("status", string(status)),
	)
	if status == model.MatchAccepted {
		s.dispatchIntents(ctx, []model.NotificationIntent{match.AcceptanceIntent(updated, actorID)})
	}
	return updated, nil
}

// ListMatchesForActor returns matches where the actor is buyer or seller.
func (s *Service) ListMatchesForActor(ctx context.Context, actorID string) ([]model.Match, error) {
	return s.store.ListMatchesForActor(ctx, actorID)
}

// Stats returns engine statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"threshold":   s.threshold,
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(ctx)
		stats["pendingTriggers"] = s.tracker.Size()
		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	}
	return stats
}
