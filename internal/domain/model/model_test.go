package model_test

import (
	"testing"

	"github.com/negade/gebeya/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategory(t *testing.T) {
	Convey("Given the category enumeration", t, func() {
		Convey("Then every listed category validates", func() {
			for _, c := range model.Categories() {
				So(c.Valid(), ShouldBeTrue)
			}
		})

		Convey("And unknown values do not", func() {
			So(model.Category("SPACESHIPS").Valid(), ShouldBeFalse)
			So(model.Category("").Valid(), ShouldBeFalse)
			So(model.Category("agricultural_products").Valid(), ShouldBeFalse)
		})
	})
}

func TestUrgencyRank(t *testing.T) {
	Convey("Given the urgency ordering", t, func() {
		Convey("Then levels rank strictly LOW < NORMAL < HIGH < URGENT", func() {
			So(model.UrgencyLow.Rank(), ShouldBeLessThan, model.UrgencyNormal.Rank())
			So(model.UrgencyNormal.Rank(), ShouldBeLessThan, model.UrgencyHigh.Rank())
			So(model.UrgencyHigh.Rank(), ShouldBeLessThan, model.UrgencyUrgent.Rank())
		})

		Convey("And unknown values rank below LOW", func() {
			So(model.Urgency("PANIC").Rank(), ShouldBeLessThan, model.UrgencyLow.Rank())
		})
	})
}
