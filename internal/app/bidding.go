package service

import (
	"context"
	"strings"

	"github.com/okian/intervue/internal/domain/bidding"
	"github.com/okian/intervue/internal/domain/eligibility"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/inflight"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
)

// ListBiddable fetches one page of interviews open for bidding, soonest
// first, restricted to scope. An empty scope uses the session's scope.
func (s *Service) ListBiddable(ctx context.Context, userID string, page, limit int, scope string) ([]model.Interview, error) {
	const op = "engine.list_biddable"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	page, limit = s.page(page, limit)
	items, err := emptyOnNotFound(s.remote.BiddableInterviews(ctx, userID, page, limit))
	if err != nil {
		s.logger.Warn(ctx, "biddable refresh failed", logger.String("user_id", userID), logger.Error(err))
		return nil, err
	}
	bidding.SortBiddable(items)

	sess, err := s.update(ctx, userID, func(sess *model.Session) error {
		board := bidding.Board{Biddable: items, Bidded: sess.Bidded}
		board.Reconcile(sess.Bidded, "")
		sess.Biddable = board.Biddable
		sess.BiddableLoaded = true
		sess.RememberInterviews(items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bidding.FilterScope(sess.Biddable, scopeOr(scope, sess.Scope)), nil
}

// ListBidded fetches one page of interviews the user has bid on, most
// recently updated first, restricted to scope.
func (s *Service) ListBidded(ctx context.Context, userID string, page, limit int, scope string) ([]model.Interview, error) {
	const op = "engine.list_bidded"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	page, limit = s.page(page, limit)
	items, err := emptyOnNotFound(s.remote.BiddedInterviews(ctx, userID, page, limit))
	if err != nil {
		s.logger.Warn(ctx, "bidded refresh failed", logger.String("user_id", userID), logger.Error(err))
		return nil, err
	}
	bidding.SortBidded(items)

	sess, err := s.update(ctx, userID, func(sess *model.Session) error {
		board := bidding.Board{Biddable: sess.Biddable}
		board.Reconcile(items, "")
		sess.Biddable, sess.Bidded = board.Biddable, board.Bidded
		sess.BiddedLoaded = true
		sess.RememberInterviews(items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bidding.FilterScope(sess.Bidded, scopeOr(scope, sess.Scope)), nil
}

// Board returns the cached biddable and bidded sets under the session scope.
func (s *Service) Board(ctx context.Context, userID string) (bidding.Board, error) {
	const op = "engine.board"
	if err := requireUser(op, userID); err != nil {
		return bidding.Board{}, err
	}
	sess, err := s.read(ctx, userID)
	if err != nil {
		return bidding.Board{}, err
	}
	return bidding.Board{
		Biddable: bidding.FilterScope(sess.Biddable, sess.Scope),
		Bidded:   bidding.FilterScope(sess.Bidded, sess.Scope),
	}, nil
}

// PlaceBid bids fee on interviewID. Malformed input never reaches the
// service. On success the interview moves from biddable to bidded with the
// bid attached and the bidded set is refreshed.
func (s *Service) PlaceBid(ctx context.Context, userID, interviewID, fee, description string) (model.Interview, error) {
	const op = "engine.place_bid"
	interviewID = strings.TrimSpace(interviewID)
	payload := map[string]string{"fee": strings.TrimSpace(fee)}

	release, err := s.acquire(ctx, "bid", inflight.Key("bid", userID, interviewID))
	if err != nil {
		s.finish(ctx, userID, model.JournalBid, interviewID, payload, err)
		return model.Interview{}, err
	}
	defer release()

	bid, err := s.prepareBid(ctx, op, userID, interviewID, fee, description)
	if err != nil {
		s.finish(ctx, userID, model.JournalBid, interviewID, payload, err)
		return model.Interview{}, err
	}

	rctx, cancel := s.detach(ctx)
	placed, err := s.remote.PlaceBid(rctx, userID, bid)
	cancel()
	if err != nil {
		s.finish(ctx, userID, model.JournalBid, interviewID, payload, err)
		return model.Interview{}, err
	}
	if placed.Fee == "" {
		placed.Fee = bid.Fee
	}

	sctx := context.WithoutCancel(ctx)
	sess, err := s.update(sctx, userID, func(sess *model.Session) error {
		board := bidding.Board{Biddable: sess.Biddable, Bidded: sess.Bidded}
		board.Move(interviewID, placed)
		sess.Biddable, sess.Bidded = board.Biddable, board.Bidded
		return nil
	})
	if err != nil {
		s.finish(ctx, userID, model.JournalBid, interviewID, payload, err)
		return model.Interview{}, err
	}
	s.finish(ctx, userID, model.JournalBid, interviewID, payload, nil)

	if refreshed, rerr := s.refreshBidded(sctx, userID, interviewID); rerr == nil {
		sess = refreshed
	} else {
		s.logger.Warn(ctx, "bidded refresh after bid failed",
			logger.String("user_id", userID),
			logger.String("interview_id", interviewID),
			logger.Error(rerr),
		)
	}

	for _, it := range sess.Bidded {
		if it.ID == interviewID {
			return it, nil
		}
	}
	return model.Interview{ID: interviewID, MyBid: &placed}, nil
}

func (s *Service) prepareBid(ctx context.Context, op, userID, interviewID, fee, description string) (model.Bid, error) {
	if err := requireUser(op, userID); err != nil {
		return model.Bid{}, err
	}
	bid, err := bidding.NewBid(interviewID, fee, description)
	if err != nil {
		return model.Bid{}, err
	}
	sess, err := s.read(ctx, userID)
	if err != nil {
		return model.Bid{}, err
	}
	if bidding.Contains(sess.Bidded, interviewID) {
		return model.Bid{}, errs.Validation(op, "a bid on this interview is already placed")
	}
	bid.InterviewerID = userID
	return bid, nil
}

// refreshBidded reloads the first bidded page and merges it with the bid
// just placed on interviewID.
func (s *Service) refreshBidded(ctx context.Context, userID, interviewID string) (*model.Session, error) {
	rctx, cancel := s.detach(ctx)
	items, err := emptyOnNotFound(s.remote.BiddedInterviews(rctx, userID, 1, s.pageLimit))
	cancel()
	if err != nil {
		return nil, err
	}
	return s.update(ctx, userID, func(sess *model.Session) error {
		board := bidding.Board{Biddable: sess.Biddable, Bidded: sess.Bidded}
		board.Reconcile(items, interviewID)
		bidding.SortBidded(board.Bidded)
		sess.Biddable, sess.Bidded = board.Biddable, board.Bidded
		sess.BiddedLoaded = true
		sess.RememberInterviews(items)
		return nil
	})
}

// SetScope restricts both bid views to one approved attribute. An empty
// talentID or ALL clears the restriction.
func (s *Service) SetScope(ctx context.Context, userID, talentID string) (string, error) {
	const op = "engine.set_scope"
	if err := requireUser(op, userID); err != nil {
		return "", err
	}
	scope := strings.TrimSpace(talentID)
	if scope == "" || strings.EqualFold(scope, model.ScopeAll) {
		scope = model.ScopeAll
	} else {
		attrs, err := s.attributes(ctx, userID)
		if err != nil {
			return "", err
		}
		if !containsAttribute(eligibility.ApprovedSelectableForBidding(attrs), scope) {
			return "", errs.Validation(op, "scope must be an approved interviewer attribute")
		}
	}
	if _, err := s.update(ctx, userID, func(sess *model.Session) error {
		sess.Scope = scope
		return nil
	}); err != nil {
		return "", err
	}
	return scope, nil
}

func scopeOr(scope, fallback string) string {
	if strings.TrimSpace(scope) != "" {
		return scope
	}
	return fallback
}

func containsAttribute(attrs []model.VerifiedAttribute, id string) bool {
	for _, a := range attrs {
		if a.ID == id {
			return true
		}
	}
	return false
}
