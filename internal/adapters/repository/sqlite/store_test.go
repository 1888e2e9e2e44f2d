package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/negade/gebeya/internal/adapters/repository"
	"github.com/negade/gebeya/internal/adapters/repository/sqlite"
	"github.com/negade/gebeya/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RoundTrip(t *testing.T) {
	Convey("Given a fresh sqlite store", t, func() {
		ctx := context.Background()
		store := openStore(t)

		Convey("When a buy request and a listing are created", func() {
			req, err := store.CreateBuyRequest(ctx, model.BuyRequest{
				BuyerID:     "buyer-1",
				Title:       "premium teff grain",
				Description: "white teff, monthly supply",
				Category:    model.CategoryAgriculturalProducts,
				MaxBudget:   10000,
				Quantity:    300,
				Unit:        "quintal",
				Location:    "Addis Ababa",
				Urgency:     model.UrgencyUrgent,
			})
			So(err, ShouldBeNil)
			So(req.ID, ShouldNotBeEmpty)
			So(req.Status, ShouldEqual, model.StatusActive)

			listing, err := store.CreateListing(ctx, model.Listing{
				SellerID:       "seller-1",
				Title:          "premium teff grain",
				Category:       model.CategoryAgriculturalProducts,
				Price:          9500,
				Currency:       "ETB",
				Quantity:       500,
				Unit:           "quintal",
				SellerVerified: true,
			})
			So(err, ShouldBeNil)

			Convey("Then the request reads back field for field", func() {
				got, err := store.GetActiveBuyRequest(ctx, req.ID)
				So(err, ShouldBeNil)
				So(got.BuyerID, ShouldEqual, "buyer-1")
				So(got.Title, ShouldEqual, "premium teff grain")
				So(got.Category, ShouldEqual, model.CategoryAgriculturalProducts)
				So(got.MaxBudget, ShouldEqual, 10000)
				So(got.Quantity, ShouldEqual, 300)
				So(got.Urgency, ShouldEqual, model.UrgencyUrgent)
				So(got.CreatedAt.IsZero(), ShouldBeFalse)
			})

			Convey("And the listing shows up for other buyers only", func() {
				visible, err := store.ListActiveListings(ctx, model.CategoryAgriculturalProducts, "buyer-1")
				So(err, ShouldBeNil)
				So(visible, ShouldHaveLength, 1)
				So(visible[0].SellerVerified, ShouldBeTrue)

				hidden, err := store.ListActiveListings(ctx, model.CategoryAgriculturalProducts, "seller-1")
				So(err, ShouldBeNil)
				So(hidden, ShouldBeEmpty)
			})

			Convey("And the request id appears in the active sweep", func() {
				ids, err := store.ListActiveBuyRequestIDs(ctx)
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{req.ID})
			})

			Convey("And a match for the pair persists exactly once", func() {
				created, err := store.CreateMatch(ctx, model.Match{
					BuyRequestID: req.ID,
					ListingID:    listing.ID,
					BuyerID:      req.BuyerID,
					SellerID:     listing.SellerID,
					Score:        92,
					Reason:       "Excellent match! ...",
				})
				So(err, ShouldBeNil)
				So(created.ID, ShouldNotBeEmpty)
				So(created.Status, ShouldEqual, model.MatchPending)

				_, err = store.CreateMatch(ctx, model.Match{
					BuyRequestID: req.ID,
					ListingID:    listing.ID,
					BuyerID:      req.BuyerID,
					SellerID:     listing.SellerID,
					Score:        92,
				})
				So(errors.Is(err, repository.ErrDuplicateMatch), ShouldBeTrue)

				forBuyer, err := store.ListMatchesForActor(ctx, req.BuyerID)
				So(err, ShouldBeNil)
				So(forBuyer, ShouldHaveLength, 1)
				So(forBuyer[0].Score, ShouldEqual, 92)

				forSeller, err := store.ListMatchesForActor(ctx, listing.SellerID)
				So(err, ShouldBeNil)
				So(forSeller, ShouldHaveLength, 1)
			})

			Convey("And a party's decision transitions the match exactly once", func() {
				created, err := store.CreateMatch(ctx, model.Match{
					BuyRequestID: req.ID,
					ListingID:    listing.ID,
					BuyerID:      req.BuyerID,
					SellerID:     listing.SellerID,
					Score:        92,
				})
				So(err, ShouldBeNil)

				updated, err := store.UpdateMatchStatus(ctx, created.ID, req.BuyerID, model.MatchAccepted)
				So(err, ShouldBeNil)
				So(updated.Status, ShouldEqual, model.MatchAccepted)

				forSeller, err := store.ListMatchesForActor(ctx, listing.SellerID)
				So(err, ShouldBeNil)
				So(forSeller[0].Status, ShouldEqual, model.MatchAccepted)

				_, err = store.UpdateMatchStatus(ctx, created.ID, listing.SellerID, model.MatchRejected)
				So(errors.Is(err, repository.ErrMatchDecided), ShouldBeTrue)

				_, err = store.UpdateMatchStatus(ctx, created.ID, "stranger", model.MatchRejected)
				So(errors.Is(err, repository.ErrNotParticipant), ShouldBeTrue)
			})

			Convey("And deciding on an unknown match reports not found", func() {
				_, err := store.UpdateMatchStatus(ctx, "missing", req.BuyerID, model.MatchAccepted)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When fetching a request that does not exist", func() {
			_, err := store.GetActiveBuyRequest(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When creating entities with invalid fields", func() {
			_, err := store.CreateBuyRequest(ctx, model.BuyRequest{Category: "NOPE"})
			So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)

			_, err = store.CreateListing(ctx, model.Listing{SellerID: "s"})
			So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)

			_, err = store.CreateMatch(ctx, model.Match{})
			So(errors.Is(err, repository.ErrInvalidEntity), ShouldBeTrue)
		})
	})
}

func TestStore_Reopen(t *testing.T) {
	Convey("Given a store written to and closed", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "reopen.db")

		store, err := sqlite.NewStore(path)
		So(err, ShouldBeNil)

		req, err := store.CreateBuyRequest(ctx, model.BuyRequest{
			BuyerID:  "buyer-1",
			Title:    "arabica beans",
			Category: model.CategoryAgriculturalProducts,
		})
		So(err, ShouldBeNil)
		So(store.Close(), ShouldBeNil)

		Convey("When the same path is opened again", func() {
			reopened, err := sqlite.NewStore(path)
			So(err, ShouldBeNil)
			defer reopened.Close()

			Convey("Then migrations are idempotent and data survives", func() {
				got, err := reopened.GetActiveBuyRequest(ctx, req.ID)
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "arabica beans")
			})
		})
	})
}
