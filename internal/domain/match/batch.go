package match

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/pkg/logger"
	"github.com/negade/gebeya/pkg/metrics"
)

// defaultBatchParallelism bounds concurrent orchestrator runs during a
// sweep.
const defaultBatchParallelism = 4

// Summary reports the outcome of one request's run inside a sweep.
type Summary struct {
	BuyRequestID string                     `json:"buy_request_id"`
	MatchesFound int                        `json:"matches_found"`
	Intents      []model.NotificationIntent `json:"-"`
	Err          error                      `json:"-"`
}

// Batch re-runs matching for every active buy request, for out-of-band
// re-synchronization after the catalog changed.
type Batch struct {
	matcher     *Matcher
	parallelism int
	logger      logger.Logger
}

// BatchOption applies a configuration option to the Batch.
type BatchOption func(*Batch)

// WithParallelism bounds the number of requests matched concurrently.
func WithParallelism(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.parallelism = n
		}
	}
}

// WithBatchLogger sets a custom logger for the batch re-matcher.
func WithBatchLogger(l logger.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBatch creates a batch re-matcher around the given matcher.
func NewBatch(matcher *Matcher, opts ...BatchOption) *Batch {
	b := &Batch{
		matcher:     matcher,
		parallelism: defaultBatchParallelism,
		logger:      logger.Get().Named("rematch"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RunAll invokes the orchestrator once per active buy request and returns
// one Summary per request, in the store's listing order. Requests are
// fanned out across a bounded worker set; each per-request run remains
// internally sequential. A failed run is recorded in its Summary and does
// not stop the sweep.
func (b *Batch) RunAll(ctx context.Context) ([]Summary, error) {
	start := time.Now()
	metrics.RecordBatchRun()
	defer func() {
		metrics.RecordBatchRunLatency(float64(time.Since(start).Milliseconds()))
	}()

	listCtx, cancel := context.WithTimeout(ctx, b.matcher.storeTimeout)
	ids, err := b.matcher.store.ListActiveBuyRequestIDs(listCtx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("listing active buy requests: %w", err)
	}

	summaries := make([]Summary, len(ids))
	for i, id := range ids {
		summaries[i] = Summary{BuyRequestID: id}
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < b.parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				run, err := b.matcher.Match(ctx, ids[i])
				summaries[i].MatchesFound = len(run.Matches)
				summaries[i].Intents = run.Intents
				summaries[i].Err = err
				if err != nil {
					b.logger.Error(ctx, "re-match failed for request",
						logger.String("buyRequestID", ids[i]),
						logger.Error(err),
					)
				}
			}
		}()
	}

dispatch:
	for i := range ids {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Indices from i on were never dispatched; no worker
			// touches them.
			for j := i; j < len(ids); j++ {
				summaries[j].Err = ctx.Err()
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	total := 0
	for _, s := range summaries {
		total += s.MatchesFound
	}
	b.logger.Info(ctx, "batch re-match finished",
		logger.Int("requests", len(ids)),
		logger.Int("matchesFound", total),
	)
	return summaries, nil
}
