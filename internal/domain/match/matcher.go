// Package match orchestrates compatibility matching between buy requests
// and listings: scoring candidates, persisting admitted matches and
// producing notification intents for the caller to dispatch.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/internal/domain/reason"
	"github.com/negade/gebeya/internal/domain/scoring"
	"github.com/negade/gebeya/pkg/logger"
	"github.com/negade/gebeya/pkg/metrics"
)

// Default orchestrator configuration constants.
const (
	// DefaultThreshold is the minimum score admitting a candidate pair as
	// a match.
	DefaultThreshold = 50

	defaultStoreTimeout = 5 * time.Second
)

// Store abstracts the four marketplace operations the orchestrator needs.
// Implementations must enforce at-most-one match per (request, listing)
// pair and surface violations as repository.ErrDuplicateMatch.
type Store interface {
	GetActiveBuyRequest(ctx context.Context, id string) (model.BuyRequest, error)
	ListActiveListings(ctx context.Context, category model.Category, excludeOwnerID string) ([]model.Listing, error)
	ListActiveBuyRequestIDs(ctx context.Context) ([]string, error)
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)
}

// Run is the outcome of one orchestrator invocation for a buy request.
// Intents are returned rather than dispatched so the caller controls
// delivery timing and failure handling.
type Run struct {
	BuyRequestID      string
	Matches           []model.Match
	Intents           []model.NotificationIntent
	CandidatesScored  int
	DuplicatesSkipped int
	WriteFailures     int
}

// Matcher runs matching for a single buy request at a time. It holds no
// mutable state; concurrent runs are safe and rely on the store's
// pair-uniqueness rather than mutual exclusion.
type Matcher struct {
	store        Store
	scorer       *scoring.Scorer
	composer     *reason.Composer
	threshold    int
	storeTimeout time.Duration
	logger       logger.Logger
}

// NewMatcher creates a matcher over the given store.
func NewMatcher(store Store, opts ...Option) *Matcher {
	m := &Matcher{
		store:        store,
		scorer:       scoring.NewScorer(),
		composer:     reason.NewComposer(),
		threshold:    DefaultThreshold,
		storeTimeout: defaultStoreTimeout,
		logger:       logger.Get().Named("matcher"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the active admission threshold.
func (m *Matcher) Threshold() int { return m.threshold }

// Match scores every eligible listing against the buy request and persists
// a PENDING match for each candidate at or above the threshold.
//
// A missing or inactive request is a valid no-op, not an error. Store read
// failures abort the run. A write failure for one candidate never drops
// the remaining candidates: duplicates are counted as benign skips and
// other failures are logged and counted, per-candidate.
func (m *Matcher) Match(ctx context.Context, buyRequestID string) (Run, error) {
	run := Run{BuyRequestID: buyRequestID}

	start := time.Now()
	defer func() {
		metrics.RecordMatchRunLatency(float64(time.Since(start).Milliseconds()))
	}()

	req, err := m.getBuyRequest(ctx, buyRequestID)
	if errors.Is(err, repository.ErrNotFound) {
		m.logger.Debug(ctx, "buy request missing or inactive; nothing to match",
			logger.String("buyRequestID", buyRequestID))
		return run, nil
	}
	if err != nil {
		return run, fmt.Errorf("loading buy request %s: %w", buyRequestID, err)
	}

	candidates, err := m.listCandidates(ctx, req)
	if err != nil {
		return run, fmt.Errorf("listing candidates for %s: %w", buyRequestID, err)
	}

	for _, listing := range candidates {
		res := m.scorer.Score(req, listing)
		run.CandidatesScored++
		metrics.RecordCandidateScored()

		if res.Total < m.threshold {
			continue
		}

		created, err := m.createMatch(ctx, req, listing, res)
		switch {
		case errors.Is(err, repository.ErrDuplicateMatch):
			// Another trigger already matched this pair; benign.
			run.DuplicatesSkipped++
			metrics.RecordDuplicateMatch()
			continue
		case err != nil:
			run.WriteFailures++
			metrics.RecordMatchWriteError()
			m.logger.Error(ctx, "match write failed; skipping candidate",
				logger.String("buyRequestID", req.ID),
				logger.String("listingID", listing.ID),
				logger.Error(err),
			)
			continue
		}

		metrics.RecordMatchCreated(created.Score)
		run.Matches = append(run.Matches, created)
		// Intents reference a durably written match only.
		run.Intents = append(run.Intents,
			buyerIntent(req, created),
			sellerIntent(listing, created),
		)
	}

	m.logger.Info(ctx, "matching run finished",
		logger.String("buyRequestID", buyRequestID),
		logger.Int("candidates", run.CandidatesScored),
		logger.Int("matches", len(run.Matches)),
		logger.Int("duplicates", run.DuplicatesSkipped),
		logger.Int("writeFailures", run.WriteFailures),
	)
	return run, nil
}

func (m *Matcher) getBuyRequest(ctx context.Context, id string) (model.BuyRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()
	return m.store.GetActiveBuyRequest(ctx, id)
}

func (m *Matcher) listCandidates(ctx context.Context, req model.BuyRequest) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()
	return m.store.ListActiveListings(ctx, req.Category, req.BuyerID)
}

func (m *Matcher) createMatch(ctx context.Context, req model.BuyRequest, listing model.Listing, res scoring.Result) (model.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()
	return m.store.CreateMatch(ctx, model.Match{
		BuyRequestID: req.ID,
		ListingID:    listing.ID,
		BuyerID:      req.BuyerID,
		SellerID:     listing.SellerID,
		Score:        res.Total,
		Reason:       m.composer.Compose(req, listing, res, m.scorer.Weights()),
		Status:       model.MatchPending,
	})
}
