package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/okian/intervue/internal/domain/bidding"
	"github.com/okian/intervue/internal/domain/model"
)

// Dashboard is everything the interviewer page shows at once.
type Dashboard struct {
	Registry
	Scope    string            `json:"scope"`
	Biddable []model.Interview `json:"biddable"`
	Bidded   []model.Interview `json:"bidded"`
}

// Dashboard refreshes the registry and the first page of both bid sets
// concurrently. The bid sets are read back from the session once both
// refreshes have been reconciled.
func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	const op = "engine.dashboard"
	if err := requireUser(op, userID); err != nil {
		return Dashboard{}, err
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reg, err := s.LoadAttributes(gctx, userID)
		d.Registry = reg
		return err
	})
	g.Go(func() error {
		_, err := s.ListBiddable(gctx, userID, 1, s.pageLimit, "")
		return err
	})
	g.Go(func() error {
		_, err := s.ListBidded(gctx, userID, 1, s.pageLimit, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	sess, err := s.read(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	d.Scope = scopeOr(sess.Scope, model.ScopeAll)
	d.Biddable = bidding.FilterScope(sess.Biddable, d.Scope)
	d.Bidded = bidding.FilterScope(sess.Bidded, d.Scope)
	return d, nil
}
