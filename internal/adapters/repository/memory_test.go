package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore_BuyRequests(t *testing.T) {
	Convey("Given an empty in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When a valid buy request is created", func() {
			created, err := store.CreateBuyRequest(ctx, model.BuyRequest{
				BuyerID:  "buyer-1",
				Title:    "teff grain",
				Category: model.CategoryAgriculturalProducts,
			})

			Convey("Then defaults are filled in", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.Status, ShouldEqual, model.StatusActive)
				So(created.Urgency, ShouldEqual, model.UrgencyNormal)
				So(created.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And it is retrievable while active", func() {
				got, err := store.GetActiveBuyRequest(ctx, created.ID)
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "teff grain")
			})

			Convey("And closing it makes it invisible to matching", func() {
				So(store.CloseBuyRequest(ctx, created.ID), ShouldBeNil)

				_, err := store.GetActiveBuyRequest(ctx, created.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

				ids, err := store.ListActiveBuyRequestIDs(ctx)
				So(err, ShouldBeNil)
				So(ids, ShouldBeEmpty)
			})
		})

		Convey("When the buyer id is missing", func() {
			_, err := store.CreateBuyRequest(ctx, model.BuyRequest{
				Category: model.CategoryAgriculturalProducts,
			})
			So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)
		})

		Convey("When the category is unknown", func() {
			_, err := store.CreateBuyRequest(ctx, model.BuyRequest{
				BuyerID:  "buyer-1",
				Category: "SPACESHIPS",
			})
			So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)
		})

		Convey("When fetching an id that does not exist", func() {
			_, err := store.GetActiveBuyRequest(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryStore_ListActiveListings(t *testing.T) {
	Convey("Given a store with listings across categories and owners", t, func() {
		ctx := context.Background()

		// Deterministic clock so insertion order equals scan order.
		ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time {
			ts = ts.Add(time.Second)
			return ts
		}))

		first, err := store.CreateListing(ctx, model.Listing{
			SellerID: "seller-1",
			Title:    "arabica coffee",
			Category: model.CategoryAgriculturalProducts,
		})
		So(err, ShouldBeNil)
		second, err := store.CreateListing(ctx, model.Listing{
			SellerID: "seller-2",
			Title:    "robusta coffee",
			Category: model.CategoryAgriculturalProducts,
		})
		So(err, ShouldBeNil)
		_, err = store.CreateListing(ctx, model.Listing{
			SellerID: "seller-3",
			Title:    "cement",
			Category: model.CategoryConstructionMaterials,
		})
		So(err, ShouldBeNil)
		_, err = store.CreateListing(ctx, model.Listing{
			SellerID: "the-buyer",
			Title:    "own coffee",
			Category: model.CategoryAgriculturalProducts,
		})
		So(err, ShouldBeNil)

		Convey("When listing the agricultural category excluding the buyer", func() {
			got, err := store.ListActiveListings(ctx, model.CategoryAgriculturalProducts, "the-buyer")

			Convey("Then only other sellers' in-category listings return, oldest first", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].ID, ShouldEqual, first.ID)
				So(got[1].ID, ShouldEqual, second.ID)
			})
		})
	})
}

func TestMemoryStore_CreateMatch(t *testing.T) {
	Convey("Given an empty in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		base := model.Match{
			BuyRequestID: "req-1",
			ListingID:    "lst-1",
			BuyerID:      "buyer-1",
			SellerID:     "seller-1",
			Score:        85,
			Reason:       "Excellent match! ...",
		}

		Convey("When a match is created", func() {
			created, err := store.CreateMatch(ctx, base)

			Convey("Then id, status and timestamp are assigned", func() {
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.Status, ShouldEqual, model.MatchPending)
				So(created.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And creating the same pair again is rejected", func() {
				_, err := store.CreateMatch(ctx, base)
				So(errors.Is(err, repository.ErrDuplicateMatch), ShouldBeTrue)
				So(store.MatchCount(ctx), ShouldEqual, 1)
			})

			Convey("And both parties see it in their match list", func() {
				forBuyer, err := store.ListMatchesForActor(ctx, "buyer-1")
				So(err, ShouldBeNil)
				So(forBuyer, ShouldHaveLength, 1)

				forSeller, err := store.ListMatchesForActor(ctx, "seller-1")
				So(err, ShouldBeNil)
				So(forSeller, ShouldHaveLength, 1)

				forStranger, err := store.ListMatchesForActor(ctx, "nobody")
				So(err, ShouldBeNil)
				So(forStranger, ShouldBeEmpty)
			})
		})

		Convey("When the pair ids are missing", func() {
			_, err := store.CreateMatch(ctx, model.Match{BuyerID: "buyer-1"})
			So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)
		})

		Convey("When a party decides on a created match", func() {
			created, err := store.CreateMatch(ctx, base)
			So(err, ShouldBeNil)

			Convey("Then accepting transitions it out of PENDING", func() {
				updated, err := store.UpdateMatchStatus(ctx, created.ID, "buyer-1", model.MatchAccepted)
				So(err, ShouldBeNil)
				So(updated.Status, ShouldEqual, model.MatchAccepted)

				forBuyer, err := store.ListMatchesForActor(ctx, "buyer-1")
				So(err, ShouldBeNil)
				So(forBuyer[0].Status, ShouldEqual, model.MatchAccepted)
			})

			Convey("And the seller can reject it just the same", func() {
				updated, err := store.UpdateMatchStatus(ctx, created.ID, "seller-1", model.MatchRejected)
				So(err, ShouldBeNil)
				So(updated.Status, ShouldEqual, model.MatchRejected)
			})

			Convey("And a second decision is rejected", func() {
				_, err := store.UpdateMatchStatus(ctx, created.ID, "buyer-1", model.MatchAccepted)
				So(err, ShouldBeNil)

				_, err = store.UpdateMatchStatus(ctx, created.ID, "seller-1", model.MatchRejected)
				So(errors.Is(err, repository.ErrMatchDecided), ShouldBeTrue)
			})

			Convey("And a third party may not decide", func() {
				_, err := store.UpdateMatchStatus(ctx, created.ID, "stranger", model.MatchAccepted)
				So(errors.Is(err, repository.ErrNotParticipant), ShouldBeTrue)
			})

			Convey("And PENDING is not a valid decision target", func() {
				_, err := store.UpdateMatchStatus(ctx, created.ID, "buyer-1", model.MatchPending)
				So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)
			})
		})

		Convey("When deciding on a match that does not exist", func() {
			_, err := store.UpdateMatchStatus(ctx, "missing", "buyer-1", model.MatchAccepted)
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When many goroutines race to match the same pair", func() {
			const racers = 16
			var wg sync.WaitGroup
			wins := make(chan struct{}, racers)

			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := store.CreateMatch(ctx, base); err == nil {
						wins <- struct{}{}
					}
				}()
			}
			wg.Wait()
			close(wins)

			Convey("Then exactly one write succeeds", func() {
				So(len(wins), ShouldEqual, 1)
				So(store.MatchCount(ctx), ShouldEqual, 1)
			})
		})
	})
}
