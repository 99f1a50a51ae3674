package lifecycle_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/lifecycle"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func intp(v int) *int { return &v }

func TestNextStatus(t *testing.T) {
	convey.Convey("Given the transition table", t, func() {
		cases := []struct {
			from   model.InterviewStatus
			prior  bool
			action lifecycle.Action
			want   model.InterviewStatus
		}{
			{model.StatusPending, false, lifecycle.ActionConfirm, model.StatusScheduled},
			{model.StatusPending, true, lifecycle.ActionConfirm, model.StatusCompleted},
			{model.StatusScheduled, false, lifecycle.ActionConfirm, model.StatusScheduled},
			{model.StatusScheduled, true, lifecycle.ActionConfirm, model.StatusCompleted},
			{model.StatusPending, false, lifecycle.ActionReject, model.StatusCancelled},
			{model.StatusScheduled, true, lifecycle.ActionReject, model.StatusCancelled},
			{"", false, lifecycle.ActionConfirm, model.StatusScheduled},
		}

		convey.Convey("Then every current state moves as listed", func() {
			for _, c := range cases {
				got, err := lifecycle.NextStatus(c.from, c.prior, c.action)
				convey.So(err, convey.ShouldBeNil)
				convey.So(got, convey.ShouldEqual, c.want)
			}
		})

		convey.Convey("Then terminal states never move", func() {
			for _, from := range []model.InterviewStatus{model.StatusCompleted, model.StatusCancelled} {
				for _, prior := range []bool{false, true} {
					for _, a := range []lifecycle.Action{lifecycle.ActionConfirm, lifecycle.ActionReject} {
						got, err := lifecycle.NextStatus(from, prior, a)
						convey.So(errors.Is(err, errs.ErrValidation), convey.ShouldBeTrue)
						convey.So(got, convey.ShouldEqual, from)
					}
				}
			}
		})

		convey.Convey("Then unknown actions are rejected", func() {
			_, err := lifecycle.NextStatus(model.StatusPending, false, "maybe")
			convey.So(errors.Is(err, errs.ErrValidation), convey.ShouldBeTrue)
		})
	})
}

func TestDecide(t *testing.T) {
	convey.Convey("Given an interview held yesterday", t, func() {
		now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		it := model.Interview{ID: "i1", InterviewDate: "2024-05-09T18:00:00Z", Status: model.StatusPending}

		convey.Convey("When the rating is missing", func() {
			_, err := lifecycle.Decide(it, lifecycle.Feedback{Feedback: "ok", Action: lifecycle.ActionConfirm}, now)
			convey.So(errs.Message(err), convey.ShouldEqual, "rating required")
		})

		convey.Convey("When the rating is out of range", func() {
			for _, r := range []int{0, 6} {
				_, err := lifecycle.Decide(it, lifecycle.Feedback{Rating: intp(r), Feedback: "ok", Action: lifecycle.ActionConfirm}, now)
				convey.So(errors.Is(err, errs.ErrValidation), convey.ShouldBeTrue)
			}
		})

		convey.Convey("When the feedback is blank", func() {
			_, err := lifecycle.Decide(it, lifecycle.Feedback{Rating: intp(3), Feedback: " ", Action: lifecycle.ActionConfirm}, now)
			convey.So(errs.Message(err), convey.ShouldEqual, "feedback required")
		})

		convey.Convey("When feedback is submitted twice", func() {
			f := lifecycle.Feedback{Rating: intp(4), Feedback: "ok", Action: lifecycle.ActionConfirm}
			first, err := lifecycle.Decide(it, f, now)
			convey.So(err, convey.ShouldBeNil)

			it.Status = first
			it.Rating = intp(4)
			text := "ok"
			it.Feedback = &text
			second, err := lifecycle.Decide(it, f, now)

			convey.Convey("Then it is scheduled and then completed", func() {
				convey.So(first, convey.ShouldEqual, model.StatusScheduled)
				convey.So(err, convey.ShouldBeNil)
				convey.So(second, convey.ShouldEqual, model.StatusCompleted)
			})
		})

		convey.Convey("When it is rejected", func() {
			got, err := lifecycle.Decide(it, lifecycle.Feedback{Rating: intp(1), Feedback: "no show", Action: lifecycle.ActionReject}, now)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, model.StatusCancelled)
		})
	})

	convey.Convey("Given an interview later today", t, func() {
		now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
		it := model.Interview{ID: "i1", InterviewDate: "2024-05-10T08:00:00Z"}

		convey.Convey("Then feedback is not open yet", func() {
			_, err := lifecycle.Decide(it, lifecycle.Feedback{Rating: intp(4), Feedback: "ok", Action: lifecycle.ActionConfirm}, now)
			convey.So(errors.Is(err, errs.ErrValidation), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a clock west of UTC", t, func() {
		pdt := time.FixedZone("PDT", -7*60*60)
		now := time.Date(2024, 6, 10, 10, 0, 0, 0, pdt)
		f := lifecycle.Feedback{Rating: intp(4), Feedback: "ok", Action: lifecycle.ActionConfirm}

		convey.Convey("When the interview date is today", func() {
			_, err := lifecycle.Decide(model.Interview{ID: "i1", InterviewDate: "2024-06-10"}, f, now)

			convey.Convey("Then feedback is not open yet", func() {
				convey.So(errors.Is(err, errs.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the interview date is yesterday", func() {
			next, err := lifecycle.Decide(model.Interview{ID: "i1", InterviewDate: "2024-06-09", Status: model.StatusPending}, f, now)

			convey.Convey("Then feedback is accepted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(next, convey.ShouldEqual, model.StatusScheduled)
			})
		})

		convey.Convey("When the interview carries an offset", func() {
			it := model.Interview{ID: "i1", InterviewDate: "2024-06-10T02:00:00Z", Status: model.StatusPending}
			next, err := lifecycle.Decide(it, f, now)

			convey.Convey("Then the instant is read on the local calendar", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(next, convey.ShouldEqual, model.StatusScheduled)
			})
		})
	})

	convey.Convey("Given an interview without a date", t, func() {
		_, err := lifecycle.Decide(model.Interview{ID: "i1"}, lifecycle.Feedback{Rating: intp(4), Feedback: "ok", Action: lifecycle.ActionConfirm}, time.Now())
		convey.So(errors.Is(err, errs.ErrValidation), convey.ShouldBeTrue)
	})
}

func TestParseAction(t *testing.T) {
	convey.Convey("Given action input", t, func() {
		a, ok := lifecycle.ParseAction("")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(a, convey.ShouldEqual, lifecycle.ActionConfirm)
		a, ok = lifecycle.ParseAction("REJECT")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(a, convey.ShouldEqual, lifecycle.ActionReject)
		_, ok = lifecycle.ParseAction("skip")
		convey.So(ok, convey.ShouldBeFalse)
	})
}
