package notify_test

import (
	"context"
	"testing"

	"github.com/negade/gebeya/internal/adapters/notify"
	"github.com/negade/gebeya/internal/domain/model"
	"github.com/negade/gebeya/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestLogEmitter(t *testing.T) {
	Convey("Given a log-backed emitter", t, func() {
		emitter := notify.NewLogEmitter()

		Convey("When an intent is emitted", func() {
			err := emitter.Emit(context.Background(), model.NotificationIntent{
				RecipientID: "buyer-1",
				Type:        model.IntentTypeNewMatch,
				Title:       "New Match Found!",
				Metadata:    model.IntentMetadata{MatchID: "m-1", Score: 85},
			})

			Convey("Then emission always succeeds", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestKafkaEmitterConstruction(t *testing.T) {
	Convey("Given broker addresses and a topic override", t, func() {
		emitter := notify.NewKafkaEmitter([]string{"localhost:9092"}, notify.WithTopic("custom.topic"))

		Convey("Then the emitter builds and closes without a broker", func() {
			So(emitter, ShouldNotBeNil)
			So(emitter.Close(), ShouldBeNil)
		})
	})
}
