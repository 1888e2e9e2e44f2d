package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/negade/gebeya/internal/domain/model"
)

// MemoryStore implements Store with mutex-guarded maps. It is the default
// backend for tests and local runs. Pair-uniqueness is enforced with a
// dedicated index so concurrent CreateMatch calls for the same pair cannot
// both succeed.
type MemoryStore struct {
	mu        sync.RWMutex
	requests  map[string]model.BuyRequest
	listings  map[string]model.Listing
	matches   map[string]model.Match
	pairIndex map[string]string // (requestID, listingID) -> match id
	now       func() time.Time
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the timestamp source, for deterministic tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		requests:  make(map[string]model.BuyRequest),
		listings:  make(map[string]model.Listing),
		matches:   make(map[string]model.Match),
		pairIndex: make(map[string]string),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func pairKey(requestID, listingID string) string {
	return requestID + "\x00" + listingID
}

// GetActiveBuyRequest returns the ACTIVE buy request with the given id.
func (s *MemoryStore) GetActiveBuyRequest(ctx context.Context, id string) (model.BuyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.requests[id]
	if !ok || r.Status != model.StatusActive {
		return model.BuyRequest{}, fmt.Errorf("buy request %s: %w", id, ErrNotFound)
	}
	return r, nil
}

// ListActiveListings returns ACTIVE listings in category from sellers other
// than excludeOwnerID, oldest first for a stable scan order.
func (s *MemoryStore) ListActiveListings(ctx context.Context, category model.Category, excludeOwnerID string) ([]model.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Listing
	for _, l := range s.listings {
		if l.Status != model.StatusActive || l.Category != category || l.SellerID == excludeOwnerID {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// ListActiveBuyRequestIDs returns ids of all ACTIVE buy requests, oldest
// first.
func (s *MemoryStore) ListActiveBuyRequestIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]model.BuyRequest, 0, len(s.requests))
	for _, r := range s.requests {
		if r.Status == model.StatusActive {
			active = append(active, r)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].CreatedAt.Equal(active[j].CreatedAt) {
			return active[i].ID < active[j].ID
		}
		return active[i].CreatedAt.Before(active[j].CreatedAt)
	})
	ids := make([]string, len(active))
	for i, r := range active {
		ids[i] = r.ID
	}
	return ids, nil
}

// CreateMatch persists a match, enforcing pair-uniqueness.
func (s *MemoryStore) CreateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	if m.BuyRequestID == "" || m.ListingID == "" {
		return model.Match{}, fmt.Errorf("match needs request and listing ids: %w", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(m.BuyRequestID, m.ListingID)
	if _, exists := s.pairIndex[key]; exists {
		return model.Match{}, fmt.Errorf("pair (%s, %s): %w", m.BuyRequestID, m.ListingID, ErrDuplicateMatch)
	}

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = model.MatchPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}

	s.matches[m.ID] = m
	s.pairIndex[key] = m.ID
	return m, nil
}

// CreateBuyRequest persists a buy request.
func (s *MemoryStore) CreateBuyRequest(ctx context.Context, r model.BuyRequest) (model.BuyRequest, error) {
	if r.BuyerID == "" || !r.Category.Valid() {
		return model.BuyRequest{}, fmt.Errorf("buy request needs buyer and valid category: %w", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = model.StatusActive
	}
	if r.Urgency == "" {
		r.Urgency = model.UrgencyNormal
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	s.requests[r.ID] = r
	return r, nil
}

// CreateListing persists a listing.
func (s *MemoryStore) CreateListing(ctx context.Context, l model.Listing) (model.Listing, error) {
	if l.SellerID == "" || !l.Category.Valid() {
		return model.Listing{}, fmt.Errorf("listing needs seller and valid category: %w", ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = model.StatusActive
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now()
	}
	s.listings[l.ID] = l
	return l, nil
}

// ListMatchesForActor returns matches involving the actor, newest first.
func (s *MemoryStore) ListMatchesForActor(ctx context.Context, actorID string) ([]model.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Match
	for _, m := range s.matches {
		if m.BuyerID == actorID || m.SellerID == actorID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateMatchStatus records a party's accept or reject decision.
func (s *MemoryStore) UpdateMatchStatus(ctx context.Context, id, actorID string, status model.MatchStatus) (model.Match, error) {
	if status != model.MatchAccepted && status != model.MatchRejected {
		return model.Match{}, fmt.Errorf("status %q is not a decision: %w", status, ErrInvalidEntity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotFound)
	}
	if m.BuyerID != actorID && m.SellerID != actorID {
		return model.Match{}, fmt.Errorf("match %s: %w", id, ErrNotParticipant)
	}
	if m.Status != model.MatchPending {
		return model.Match{}, fmt.Errorf("match %s is %s: %w", id, m.Status, ErrMatchDecided)
	}

	m.Status = status
	s.matches[id] = m
	return m, nil
}

// CloseBuyRequest marks a request CLOSED so it stops matching. Used by
// tests and administrative tooling.
func (s *MemoryStore) CloseBuyRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.requests[id]
	if !ok {
		return fmt.Errorf("buy request %s: %w", id, ErrNotFound)
	}
	r.Status = model.StatusClosed
	s.requests[id] = r
	return nil
}

// MatchCount reports the number of persisted matches.
func (s *MemoryStore) MatchCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
