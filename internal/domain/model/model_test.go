package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/payscout/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestPlatformAdvisory(t *testing.T) {
	convey.Convey("Given platforms with advisory texts", t, func() {
		convey.Convey("When only a warning is set", func() {
			p := model.Platform{Warning: "Payment delays"}
			convey.So(p.Advisory(), convey.ShouldEqual, "Payment delays")
		})

		convey.Convey("When both warning and caution are set", func() {
			p := model.Platform{Warning: "w", Caution: "c"}
			convey.So(p.Advisory(), convey.ShouldEqual, "w")
		})

		convey.Convey("When only a caution is set", func() {
			p := model.Platform{Caution: "Limited availability"}
			convey.So(p.Advisory(), convey.ShouldEqual, "Limited availability")
		})

		convey.Convey("When neither is set", func() {
			convey.So(model.Platform{}.Advisory(), convey.ShouldEqual, "")
		})
	})
}

func TestParseDifficulty(t *testing.T) {
	convey.Convey("Given difficulty labels from the catalog", t, func() {
		cases := []struct {
			in     string
			lo, hi model.Difficulty
		}{
			{"Beginner", model.Beginner, model.Beginner},
			{"Intermediate", model.Intermediate, model.Intermediate},
			{"Advanced", model.Advanced, model.Advanced},
			{"Expert", model.Expert, model.Expert},
			{"Professional", model.Expert, model.Expert},
			{"Beginner to Intermediate", model.Beginner, model.Intermediate},
			{"Intermediate to Advanced", model.Intermediate, model.Advanced},
			{"Beginner to Advanced", model.Beginner, model.Advanced},
		}
		for _, tc := range cases {
			lo, hi, err := model.ParseDifficulty(tc.in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(lo, convey.ShouldEqual, tc.lo)
			convey.So(hi, convey.ShouldEqual, tc.hi)
		}

		convey.Convey("When the label is unknown or inverted", func() {
			for _, in := range []string{"", "Guru", "Advanced to Beginner", "Beginner to to Expert"} {
				_, _, err := model.ParseDifficulty(in)
				convey.So(errors.Is(err, model.ErrUnknownDifficulty), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When rendering a level", func() {
			convey.So(model.Advanced.String(), convey.ShouldEqual, "Advanced")
			convey.So(model.Difficulty(9).String(), convey.ShouldEqual, "Difficulty(9)")
		})
	})
}

func TestParseRegion(t *testing.T) {
	convey.Convey("Given region query values", t, func() {
		for in, want := range map[string]model.Region{
			"":       model.RegionAll,
			"all":    model.RegionAll,
			"Global": model.RegionGlobal,
			"us-ca":  model.RegionUSCA,
		} {
			r, err := model.ParseRegion(in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(r, convey.ShouldEqual, want)
		}

		convey.Convey("When the region is unknown", func() {
			_, err := model.ParseRegion("eu")
			convey.So(errors.Is(err, model.ErrInvalidRegion), convey.ShouldBeTrue)
		})
	})
}
