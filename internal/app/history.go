package service

import (
	"context"
	"errors"

	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/history"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
)

// HistoryQuery selects and orders a history report.
type HistoryQuery struct {
	Role     string
	Category string
	Type     string
	Search   string
	Sort     string
}

// History returns userID's past interviews in the six category buckets,
// filtered by talent type and search text and sorted by date. A category
// narrows the report to one bucket; the other buckets stay present and
// empty.
func (s *Service) History(ctx context.Context, userID string, q HistoryQuery) (history.Groups, error) {
	const op = "engine.history"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	role, ok := model.ParseRole(q.Role)
	if !ok {
		return nil, errs.Validation(op, "unknown role")
	}
	typeFilter, ok := history.ParseTypeFilter(q.Type)
	if !ok {
		return nil, errs.Validation(op, "type must be All, Skills or Domain")
	}
	var only model.Category
	if q.Category != "" {
		if only, ok = model.ParseCategory(q.Category); !ok {
			return nil, errs.Validation(op, "unknown category")
		}
	}

	raw, err := s.remote.InterviewHistory(ctx, string(role), userID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		s.logger.Warn(ctx, "history refresh failed", logger.String("user_id", userID), logger.Error(err))
		return nil, err
	}
	groups := history.Group(raw)

	if _, err := s.update(ctx, userID, func(sess *model.Session) error {
		sess.RememberInterviews(groups.Flatten())
		return nil
	}); err != nil {
		return nil, err
	}

	criteria := history.Criteria{Type: typeFilter, Query: q.Search}
	dir := history.ParseDirection(q.Sort)
	for c, items := range groups {
		if only != "" && c != only {
			groups[c] = []model.Interview{}
			continue
		}
		items = history.Filter(items, criteria)
		history.SortByDate(items, dir)
		groups[c] = items
	}
	return groups, nil
}
