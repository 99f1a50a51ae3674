// Package lifecycle is the interview status machine driven by the
// interviewee's rating and feedback submissions.
package lifecycle

import (
	"strings"
	"time"

	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/model"
)

// Action is what the interviewee does with a past interview.
type Action string

// Feedback actions.
const (
	ActionConfirm Action = "confirm"
	ActionReject  Action = "reject"
)

// ParseAction parses a case-insensitive action, defaulting to confirm.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case "", ActionConfirm:
		return ActionConfirm, true
	case ActionReject:
		return ActionReject, true
	default:
		return "", false
	}
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

type transitionKey struct {
	from   model.InterviewStatus
	prior  bool
	action Action
}

// transitions lists every allowed move. Terminal states have no entry.
var transitions = map[transitionKey]model.InterviewStatus{
	{model.StatusPending, false, ActionConfirm}:   model.StatusScheduled,
	{model.StatusPending, true, ActionConfirm}:    model.StatusCompleted,
	{model.StatusPending, false, ActionReject}:    model.StatusCancelled,
	{model.StatusPending, true, ActionReject}:     model.StatusCancelled,
	{model.StatusScheduled, false, ActionConfirm}: model.StatusScheduled,
	{model.StatusScheduled, true, ActionConfirm}:  model.StatusCompleted,
	{model.StatusScheduled, false, ActionReject}:  model.StatusCancelled,
	{model.StatusScheduled, true, ActionReject}:   model.StatusCancelled,
}

// NextStatus returns the status an interview moves to. Confirming without
// prior feedback schedules it, confirming with prior feedback completes it,
// rejecting cancels it. Terminal and unknown states are rejected.
func NextStatus(current model.InterviewStatus, hasPriorFeedback bool, action Action) (model.InterviewStatus, error) {
	const op = "lifecycle.next_status"
	if current == "" {
		current = model.StatusPending
	}
	if current.IsTerminal() {
		return current, errs.Validation(op, "interview is already "+strings.ToLower(string(current)))
	}
	next, ok := transitions[transitionKey{current, hasPriorFeedback, action}]
	if !ok {
		return current, errs.Validation(op, "transition not allowed")
	}
	return next, nil
}

// Feedback is one rating/feedback submission.
type Feedback struct {
	Rating   *int
	Feedback string
	Action   Action
}

// Validate checks the submission itself, independent of the interview.
func (f Feedback) Validate() error {
	const op = "lifecycle.validate_feedback"
	if f.Rating == nil {
		return errs.Validation(op, "rating required")
	}
	if *f.Rating < MinRating || *f.Rating > MaxRating {
		return errs.Validation(op, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(f.Feedback) == "" {
		return errs.Validation(op, "feedback required")
	}
	if f.Action != ActionConfirm && f.Action != ActionReject {
		return errs.Validation(op, "unknown action")
	}
	return nil
}

// IsPast reports whether date falls before today, comparing calendar dates
// in now's location.
func IsPast(date, now time.Time) bool {
	y, m, d := date.In(now.Location()).Date()
	ny, nm, nd := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC))
}

// Decide validates f against it and returns the status to submit.
func Decide(it model.Interview, f Feedback, now time.Time) (model.InterviewStatus, error) {
	const op = "lifecycle.decide"
	if err := f.Validate(); err != nil {
		return it.Status, err
	}
	if it.Status.IsTerminal() {
		return it.Status, errs.Validation(op, "interview is already "+strings.ToLower(string(it.Status)))
	}
	date, ok := it.DateIn(now.Location())
	if !ok || !IsPast(date, now) {
		return it.Status, errs.Validation(op, "feedback opens after the interview date")
	}
	return NextStatus(it.Status, it.HasFeedback(), f.Action)
}
