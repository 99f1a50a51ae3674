package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/okian/intervue/internal/domain/errs"
	. "github.com/smartystreets/goconvey/convey"
)

func TestError(t *testing.T) {
	Convey("Given engine errors", t, func() {
		Convey("When a validation error is built", func() {
			err := errs.Validation("engine.place_bid", "fee must be a positive number")

			Convey("Then it matches the validation kind only", func() {
				So(errors.Is(err, errs.ErrValidation), ShouldBeTrue)
				So(errors.Is(err, errs.ErrRemote), ShouldBeFalse)
				So(err.Error(), ShouldEqual, "engine.place_bid: fee must be a positive number")
				So(errs.Message(err), ShouldEqual, "fee must be a positive number")
				So(errs.Label(err), ShouldEqual, "validation")
			})
		})

		Convey("When a remote failure is wrapped", func() {
			cause := errors.New("connection refused")
			err := errs.Wrap("interviewsvc.place_bid", errs.ErrRemote, "bid submission failed", cause)

			Convey("Then both the kind and the cause are reachable", func() {
				So(errors.Is(err, errs.ErrRemote), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "connection refused")
			})

			Convey("And wrapping it again keeps the kind", func() {
				outer := fmt.Errorf("dashboard: %w", err)
				So(errs.KindOf(outer), ShouldEqual, errs.ErrRemote)
			})
		})

		Convey("When an error carries no kind", func() {
			err := errors.New("boom")

			Convey("Then it is classified as remote", func() {
				So(errs.KindOf(err), ShouldEqual, errs.ErrRemote)
				So(errs.Label(err), ShouldEqual, "remote")
				So(errs.Message(err), ShouldEqual, "boom")
			})
		})

		Convey("When the availability kind is used", func() {
			err := errs.New("engine.list_biddable", errs.ErrAvailabilityNotConfigured, "")

			Convey("Then the kind text is used as message", func() {
				So(err.Error(), ShouldEqual, "engine.list_biddable: interviewer availability not configured")
				So(errs.Label(err), ShouldEqual, "availability_not_configured")
			})
		})
	})
}
