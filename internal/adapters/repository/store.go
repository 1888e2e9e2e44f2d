// Package repository defines the marketplace store port consumed by the
// matching engine, plus the in-memory implementation.
package repository

import (
	"context"

	"github.com/negade/gebeya/internal/domain/model"
)

// Store provides read/write access to marketplace state. Implementations
// must enforce at-most-one Match per (BuyRequestID, ListingID) pair and
// report violations as ErrDuplicateMatch.
type Store interface {
	// GetActiveBuyRequest returns the buy request with the given id.
	// Returns ErrNotFound when the request is missing or not ACTIVE.
	GetActiveBuyRequest(ctx context.Context, id string) (model.BuyRequest, error)

	// ListActiveListings returns every ACTIVE listing in category whose
	// seller differs from excludeOwnerID.
	ListActiveListings(ctx context.Context, category model.Category, excludeOwnerID string) ([]model.Listing, error)

	// ListActiveBuyRequestIDs returns the ids of all ACTIVE buy requests,
	// for batch re-matching.
	ListActiveBuyRequestIDs(ctx context.Context) ([]string, error)

	// CreateMatch persists m, assigning ID and CreatedAt when unset.
	// Returns ErrDuplicateMatch when a match for the same pair exists.
	CreateMatch(ctx context.Context, m model.Match) (model.Match, error)

	// CreateBuyRequest persists a new buy request, assigning ID, status
	// and CreatedAt when unset.
	CreateBuyRequest(ctx context.Context, r model.BuyRequest) (model.BuyRequest, error)

	// CreateListing persists a new listing, assigning ID, status and
	// CreatedAt when unset.
	CreateListing(ctx context.Context, l model.Listing) (model.Listing, error)

	// ListMatchesForActor returns matches where the actor is buyer or
	// seller, most recent first.
	ListMatchesForActor(ctx context.Context, actorID string) ([]model.Match, error)

	// UpdateMatchStatus transitions a PENDING match to ACCEPTED or
	// REJECTED on behalf of actorID, who must be the match's buyer or
	// seller. Returns ErrNotFound for an unknown match, ErrNotParticipant
	// for a third party, ErrMatchDecided when the match already left
	// PENDING, and ErrInvalidEntity for any other target status.
	UpdateMatchStatus(ctx context.Context, id, actorID string, status model.MatchStatus) (model.Match, error)
}
