package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/negade/gebeya/internal/adapters/mq/queue"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with a small capacity", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))

		job := func(id string) queue.Job {
			return queue.Job{BuyRequestID: id, TriggeredBy: "test", EnqueuedAt: time.Now()}
		}

		Convey("When jobs fit within capacity", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Enqueue(ctx, job("b")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 2)

			Convey("Then a third enqueue is rejected as backpressure", func() {
				So(q.Enqueue(ctx, job("c")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And dequeue yields jobs in FIFO order", func() {
				jobs := q.Dequeue(ctx)
				So((<-jobs).BuyRequestID, ShouldEqual, "a")
				So((<-jobs).BuyRequestID, ShouldEqual, "b")
				So(q.Len(ctx), ShouldEqual, 0)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, job("a")), ShouldBeTrue)
			So(q.Close(), ShouldBeNil)

			Convey("Then further enqueues are rejected", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, job("b")), ShouldBeFalse)
			})

			Convey("And closing twice returns the sentinel", func() {
				So(q.Close(), ShouldEqual, queue.ErrClosed)
			})

			Convey("And workers drain the remainder before the channel closes", func() {
				jobs := q.Dequeue(ctx)
				j, ok := <-jobs
				So(ok, ShouldBeTrue)
				So(j.BuyRequestID, ShouldEqual, "a")

				_, ok = <-jobs
				So(ok, ShouldBeFalse)
			})
		})
	})
}
