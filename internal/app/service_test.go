package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/negade/gebeya/internal/adapters/repository"
	app "github.com/negade/gebeya/internal/app"
	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// captureEmitter records intents and signals arrival.
type captureEmitter struct {
	mu      sync.Mutex
	intents []model.NotificationIntent
	signal  chan struct{}
}

func newCaptureEmitter() *captureEmitter {
	return &captureEmitter{signal: make(chan struct{}, 64)}
}

func (e *captureEmitter) Emit(ctx context.Context, intent model.NotificationIntent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.intents = append(e.intents, intent)
	e.signal <- struct{}{}
	return nil
}

func (e *captureEmitter) wait(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for i := 0; i < n; i++ {
		select {
		case <-e.signal:
		case <-deadline:
			return false
		}
	}
	return true
}

func (e *captureEmitter) recorded() []model.NotificationIntent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.NotificationIntent(nil), e.intents...)
}

func TestService_EndToEnd(t *testing.T) {
	Convey("Given a started service over an in-memory store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		emitter := newCaptureEmitter()

		svc := app.New(
			app.WithStore(store),
			app.WithEmitter(emitter),
			app.WithWorkerCount(2),
			app.WithQueueSize(16),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.CreateListing(ctx, model.Listing{
			SellerID: "seller-1",
			Title:    "premium teff grain",
			Category: model.CategoryAgriculturalProducts,
			Price:    9500,
			Currency: "ETB",
			Quantity: 500,
			Unit:     "quintal",
		})
		So(err, ShouldBeNil)

		Convey("When a compatible buy request is created", func() {
			created, err := svc.CreateBuyRequest(ctx, model.BuyRequest{
				BuyerID:   "buyer-1",
				Title:     "premium teff grain",
				Category:  model.CategoryAgriculturalProducts,
				MaxBudget: 10000,
				Quantity:  300,
			})
			So(err, ShouldBeNil)

			Convey("Then matching runs in the background and notifies both parties", func() {
				So(emitter.wait(2, 3*time.Second), ShouldBeTrue)

				intents := emitter.recorded()
				So(intents, ShouldHaveLength, 2)

				recipients := map[string]bool{}
				for _, i := range intents {
					recipients[i.RecipientID] = true
					So(i.Type, ShouldEqual, model.IntentTypeNewMatch)
				}
				So(recipients["buyer-1"], ShouldBeTrue)
				So(recipients["seller-1"], ShouldBeTrue)
			})

			Convey("And the match is visible to both actors", func() {
				So(emitter.wait(2, 3*time.Second), ShouldBeTrue)

				forBuyer, err := svc.ListMatchesForActor(ctx, "buyer-1")
				So(err, ShouldBeNil)
				So(forBuyer, ShouldHaveLength, 1)
				So(forBuyer[0].BuyRequestID, ShouldEqual, created.ID)
				So(forBuyer[0].Status, ShouldEqual, model.MatchPending)

				forSeller, err := svc.ListMatchesForActor(ctx, "seller-1")
				So(err, ShouldBeNil)
				So(forSeller, ShouldHaveLength, 1)
			})
		})

		Convey("When matching is run synchronously", func() {
			created, err := store.CreateBuyRequest(ctx, model.BuyRequest{
				BuyerID:   "buyer-2",
				Title:     "premium teff grain",
				Category:  model.CategoryAgriculturalProducts,
				MaxBudget: 10000,
			})
			So(err, ShouldBeNil)

			run, err := svc.MatchNow(ctx, created.ID)

			Convey("Then the run returns matches and dispatches intents", func() {
				So(err, ShouldBeNil)
				So(run.Matches, ShouldHaveLength, 1)
				So(emitter.wait(2, time.Second), ShouldBeTrue)
			})
		})

		Convey("When stats are requested", func() {
			stats := svc.Stats(ctx)

			Convey("Then engine state is reported", func() {
				So(stats["started"], ShouldBeTrue)
				So(stats["workerCount"], ShouldEqual, 2)
				So(stats["queueSize"], ShouldEqual, 16)
			})
		})
	})
}

func TestService_TriggerCoalescing(t *testing.T) {
	Convey("Given a started service with a tiny queue and no workers draining it", t, func() {
		ctx := context.Background()

		// A single worker and a queue of one: the first trigger occupies the
		// queue while the worker is busy elsewhere is hard to control, so
		// coalescing is asserted before any dequeue can happen.
		svc := app.New(
			app.WithStore(repository.NewMemoryStore()),
			app.WithEmitter(newCaptureEmitter()),
			app.WithWorkerCount(1),
			app.WithQueueSize(1),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the same unknown request is triggered twice back to back", func() {
			queued, dup := svc.TriggerMatch(ctx, "req-x", app.TriggerAPI)
			queuedAgain, dupAgain := svc.TriggerMatch(ctx, "req-x", app.TriggerAPI)

			Convey("Then at most one job is queued", func() {
				So(queued, ShouldBeTrue)
				So(dup, ShouldBeFalse)
				// The second trigger either coalesced or the first was
				// already picked up and re-queued; never both queued and
				// duplicate.
				So(queuedAgain && dupAgain, ShouldBeFalse)
			})
		})
	})
}

func TestService_RespondToMatch(t *testing.T) {
	Convey("Given a started service with a pending match", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		emitter := newCaptureEmitter()

		svc := app.New(
			app.WithStore(store),
			app.WithEmitter(emitter),
			app.WithWorkerCount(1),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		pending, err := store.CreateMatch(ctx, model.Match{
			BuyRequestID: "req-1",
			ListingID:    "lst-1",
			BuyerID:      "buyer-1",
			SellerID:     "seller-1",
			Score:        85,
		})
		So(err, ShouldBeNil)

		Convey("When the buyer accepts the match", func() {
			updated, err := svc.RespondToMatch(ctx, pending.ID, "buyer-1", model.MatchAccepted)

			Convey("Then the seller is invited to negotiate", func() {
				So(err, ShouldBeNil)
				So(updated.Status, ShouldEqual, model.MatchAccepted)
				So(emitter.wait(1, time.Second), ShouldBeTrue)

				intents := emitter.recorded()
				So(intents, ShouldHaveLength, 1)
				So(intents[0].RecipientID, ShouldEqual, "seller-1")
				So(intents[0].Type, ShouldEqual, model.IntentTypeMatchAccepted)
				So(intents[0].Title, ShouldEqual, "Buyer Accepted Match!")
				So(intents[0].TitleAm, ShouldEqual, "ገዢው ተስማምቷል!")
				So(intents[0].Message, ShouldContainSubstring, "start negotiating")
				So(intents[0].ActionURL, ShouldEqual, "/dashboard/matches/"+pending.ID)
				So(intents[0].Metadata.MatchID, ShouldEqual, pending.ID)
				So(intents[0].Metadata.Score, ShouldEqual, 85)
			})
		})

		Convey("When the seller accepts the match", func() {
			_, err := svc.RespondToMatch(ctx, pending.ID, "seller-1", model.MatchAccepted)

			Convey("Then the buyer is the one notified", func() {
				So(err, ShouldBeNil)
				So(emitter.wait(1, time.Second), ShouldBeTrue)

				intents := emitter.recorded()
				So(intents[0].RecipientID, ShouldEqual, "buyer-1")
				So(intents[0].Title, ShouldEqual, "Seller Accepted Match!")
			})
		})

		Convey("When the buyer rejects the match", func() {
			updated, err := svc.RespondToMatch(ctx, pending.ID, "buyer-1", model.MatchRejected)

			Convey("Then the status changes and nobody is notified", func() {
				So(err, ShouldBeNil)
				So(updated.Status, ShouldEqual, model.MatchRejected)
				So(emitter.wait(1, 100*time.Millisecond), ShouldBeFalse)
			})
		})

		Convey("When the match was already decided", func() {
			_, err := svc.RespondToMatch(ctx, pending.ID, "buyer-1", model.MatchAccepted)
			So(err, ShouldBeNil)

			_, err = svc.RespondToMatch(ctx, pending.ID, "seller-1", model.MatchRejected)

			Convey("Then the second decision is refused", func() {
				So(errors.Is(err, repository.ErrMatchDecided), ShouldBeTrue)
			})
		})
	})
}

func TestService_RematchAll(t *testing.T) {
	Convey("Given a started service with seeded data", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		emitter := newCaptureEmitter()

		svc := app.New(
			app.WithStore(store),
			app.WithEmitter(emitter),
			app.WithWorkerCount(1),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		// Seed through the store directly so no background trigger fires.
		req, err := store.CreateBuyRequest(ctx, model.BuyRequest{
			BuyerID:   "buyer-1",
			Title:     "arabica coffee beans",
			Category:  model.CategoryAgriculturalProducts,
			MaxBudget: 1000,
		})
		So(err, ShouldBeNil)
		_, err = store.CreateListing(ctx, model.Listing{
			SellerID: "seller-1",
			Title:    "arabica coffee beans",
			Category: model.CategoryAgriculturalProducts,
			Price:    800,
			Quantity: 10,
		})
		So(err, ShouldBeNil)

		Convey("When a batch re-match runs", func() {
			summaries, err := svc.RematchAll(ctx)

			Convey("Then the new pair is matched and intents dispatched", func() {
				So(err, ShouldBeNil)
				So(summaries, ShouldHaveLength, 1)
				So(summaries[0].BuyRequestID, ShouldEqual, req.ID)
				So(summaries[0].MatchesFound, ShouldEqual, 1)
				So(emitter.wait(2, time.Second), ShouldBeTrue)
			})

			Convey("And a second sweep finds nothing new", func() {
				again, err := svc.RematchAll(ctx)
				So(err, ShouldBeNil)
				So(again[0].MatchesFound, ShouldEqual, 0)
			})
		})
	})
}
