package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/payscout/internal/domain/model"
	types "github.com/okian/payscout/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCategorySummary(t *testing.T) {
	Convey("Given a CategorySummary", t, func() {
		summary := types.CategorySummary{
			Category:      model.Category{ID: "surveys", Name: "Surveys"},
			PlatformCount: 7,
		}

		Convey("When encoding to JSON", func() {
			raw, err := json.Marshal(summary)

			Convey("Then the descriptor fields are flattened", func() {
				So(err, ShouldBeNil)
				var decoded map[string]any
				So(json.Unmarshal(raw, &decoded), ShouldBeNil)
				So(decoded["id"], ShouldEqual, "surveys")
				So(decoded["name"], ShouldEqual, "Surveys")
				So(decoded["platform_count"], ShouldEqual, 7.0)
			})
		})
	})
}

func TestPlatformView(t *testing.T) {
	Convey("Given a PlatformView without an advisory", t, func() {
		view := types.PlatformView{
			Platform:     model.Platform{Name: "Prolific", Rating: "4.5/5", MinCashout: "$6"},
			RatingValue:  4.5,
			CashoutValue: 6,
		}

		Convey("Then the advisory is omitted and parsed values are present", func() {
			raw, err := json.Marshal(view)
			So(err, ShouldBeNil)
			So(string(raw), ShouldNotContainSubstring, `"advisory"`)
			So(string(raw), ShouldContainSubstring, `"rating_value":4.5`)
			So(string(raw), ShouldContainSubstring, `"rating":"4.5/5"`)
		})
	})
}
