package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/okian/intervue/internal/domain/bidding"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/inflight"
	"github.com/okian/intervue/internal/domain/lifecycle"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

// ListCurrent returns userID's PENDING and SCHEDULED interviews in role,
// soonest first, and caches them for feedback submission.
func (s *Service) ListCurrent(ctx context.Context, userID, role string) ([]model.Interview, error) {
	const op = "engine.list_current"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	r, ok := model.ParseRole(role)
	if !ok {
		return nil, errs.Validation(op, "unknown role")
	}
	items, err := emptyOnNotFound(s.remote.CurrentInterviews(ctx, string(r), userID))
	if err != nil {
		s.logger.Warn(ctx, "current interviews refresh failed", logger.String("user_id", userID), logger.Error(err))
		return nil, err
	}

	current := make([]model.Interview, 0, len(items))
	for _, it := range items {
		if it.Status == "" || it.Status.IsCurrent() {
			current = append(current, it)
		}
	}
	bidding.SortBiddable(current)

	if _, err := s.update(ctx, userID, func(sess *model.Session) error {
		sess.RememberInterviews(items)
		return nil
	}); err != nil {
		return nil, err
	}
	return current, nil
}

// SubmitFeedback rates a past interview and moves it along its lifecycle.
// The first confirmation schedules the interview, the second completes it,
// a rejection cancels it.
func (s *Service) SubmitFeedback(ctx context.Context, userID, interviewID string, f lifecycle.Feedback) (model.Interview, error) {
	const op = "engine.submit_feedback"
	interviewID = strings.TrimSpace(interviewID)
	payload := map[string]string{"action": string(f.Action)}
	if f.Rating != nil {
		payload["rating"] = strconv.Itoa(*f.Rating)
	}

	release, err := s.acquire(ctx, "feedback", inflight.Key("feedback", userID, interviewID))
	if err != nil {
		s.finish(ctx, userID, model.JournalFeedback, interviewID, payload, err)
		return model.Interview{}, err
	}
	defer release()

	it, next, err := s.prepareFeedback(ctx, op, userID, interviewID, f)
	if err != nil {
		s.finish(ctx, userID, model.JournalFeedback, interviewID, payload, err)
		return model.Interview{}, err
	}
	payload["from"], payload["to"] = string(it.Status), string(next)

	text := strings.TrimSpace(f.Feedback)
	rctx, cancel := s.detach(ctx)
	ack, err := s.remote.SubmitFeedback(rctx, interviewID, *f.Rating, text, next)
	cancel()
	if err != nil {
		s.finish(ctx, userID, model.JournalFeedback, interviewID, payload, err)
		return model.Interview{}, err
	}

	updated := it
	updated.Status = next
	if ack.Status.IsValid() {
		updated.Status = ack.Status
	}
	rating := *f.Rating
	updated.Rating = &rating
	updated.Feedback = &text
	if ack.UpdatedAt != "" {
		updated.UpdatedAt = ack.UpdatedAt
	}

	_, err = s.update(context.WithoutCancel(ctx), userID, func(sess *model.Session) error {
		sess.RememberInterviews([]model.Interview{updated})
		return nil
	})
	s.finish(ctx, userID, model.JournalFeedback, interviewID, payload, err)
	if err != nil {
		return model.Interview{}, err
	}
	metrics.RecordFeedbackTransition(string(updated.Status))
	return updated, nil
}

func (s *Service) prepareFeedback(ctx context.Context, op, userID, interviewID string, f lifecycle.Feedback) (model.Interview, model.InterviewStatus, error) {
	if err := requireUser(op, userID); err != nil {
		return model.Interview{}, "", err
	}
	if interviewID == "" {
		return model.Interview{}, "", errs.Validation(op, "interview id is required")
	}
	if err := f.Validate(); err != nil {
		return model.Interview{}, "", err
	}
	sess, err := s.read(ctx, userID)
	if err != nil {
		return model.Interview{}, "", err
	}
	it, ok := sess.Interviews[interviewID]
	if !ok {
		return model.Interview{}, "", errs.New(op, errs.ErrNotFound, "interview not found among the loaded interviews")
	}
	next, err := lifecycle.Decide(it, f, s.now())
	if err != nil {
		return model.Interview{}, "", err
	}
	return it, next, nil
}
