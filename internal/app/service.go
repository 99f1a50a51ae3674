// Package service is the interview bidding and lifecycle engine. It owns the
// per-user sessions, enforces every local precondition before a remote call
// and records each submission in the activity journal.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/intervue/internal/adapters/repository"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/inflight"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

const (
	defaultPageLimit     = 20
	defaultRemoteTimeout = 15 * time.Second
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// Remote is the Interview Service as the engine sees it.
type Remote interface {
	VerifiedAttributes(ctx context.Context, freelancerID string) ([]model.VerifiedAttribute, error)
	ApplyInterviewer(ctx context.Context, freelancerID, attributeID string, charge float64) (model.VerifiedAttribute, error)
	SetInterviewerActive(ctx context.Context, freelancerID, attributeID string, status model.ActiveStatus) (model.VerifiedAttribute, error)
	BiddableInterviews(ctx context.Context, interviewerID string, page, limit int) ([]model.Interview, error)
	BiddedInterviews(ctx context.Context, interviewerID string, page, limit int) ([]model.Interview, error)
	PlaceBid(ctx context.Context, interviewerID string, bid model.Bid) (model.Bid, error)
	CurrentInterviews(ctx context.Context, role, userID string) ([]model.Interview, error)
	InterviewHistory(ctx context.Context, role, userID string) (map[string][]model.Interview, error)
	SubmitFeedback(ctx context.Context, interviewID string, rating int, feedback string, status model.InterviewStatus) (model.Interview, error)
}

// JournalQueue accepts journal entries for asynchronous writing.
type JournalQueue interface {
	Enqueue(ctx context.Context, e model.JournalEntry) error
	Len() int
}

// ActivityReader reads back the activity journal.
type ActivityReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error)
}

// Service is the engine. All operations take the acting user explicitly.
type Service struct {
	remote       Remote
	sessions     repository.SessionStore
	ownsSessions bool
	guard        inflight.Guard
	queue        JournalQueue
	journal      ActivityReader

	pageLimit     int
	remoteTimeout time.Duration
	now           func() time.Time
	newID         func() string

	locksMu sync.Mutex
	locks   map[string]*userLock

	logger logger.Logger
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// New constructs the engine around remote.
func New(ctx context.Context, remote Remote, opts ...Option) *Service {
	s := &Service{
		remote:        remote,
		pageLimit:     defaultPageLimit,
		remoteTimeout: defaultRemoteTimeout,
		now:           time.Now,
		newID:         uuid.NewString,
		locks:         make(map[string]*userLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("engine")
	}
	if s.sessions == nil {
		s.sessions = repository.NewMemorySessionStore(ctx)
		s.ownsSessions = true
	}
	if s.guard == nil {
		s.guard = inflight.NewGuard()
	}
	return s
}

// lockUser serializes session access for one user. Remote calls never run
// while the lock is held.
func (s *Service) lockUser(userID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &userLock{}
		s.locks[userID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, userID)
		}
		s.locksMu.Unlock()
	}
}

// read returns a snapshot of userID's session.
func (s *Service) read(ctx context.Context, userID string) (*model.Session, error) {
	unlock := s.lockUser(userID)
	defer unlock()
	return s.sessions.Load(ctx, userID)
}

// update applies fn to userID's session and saves it. Nothing is saved when
// fn fails.
func (s *Service) update(ctx context.Context, userID string, fn func(*model.Session) error) (*model.Session, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	sess, err := s.sessions.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// detach returns a context for a mutating remote call. The call outlives a
// caller that goes away so its result can still be applied.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.remoteTimeout)
}

// acquire takes the in-flight slot for key or fails with ErrBusy.
func (s *Service) acquire(ctx context.Context, op, key string) (func(), error) {
	if !s.guard.Acquire(ctx, key) {
		metrics.RecordInflightRejection(op)
		return nil, errs.New("engine."+op, errs.ErrBusy, "the same submission is already in progress")
	}
	return func() { s.guard.Release(ctx, key) }, nil
}

// finish records the outcome of a submission in metrics, logs and the journal.
func (s *Service) finish(ctx context.Context, userID string, kind model.JournalKind, target string, payload map[string]string, err error) {
	op := string(kind)
	outcome := model.OutcomeOK
	if err != nil {
		outcome = errs.Label(err)
	}
	metrics.RecordOperation(op, outcome)

	switch {
	case err == nil:
		s.logger.Info(ctx, "submission accepted",
			logger.String("operation", op),
			logger.String("user_id", userID),
			logger.String("target", target),
		)
	case errors.Is(err, errs.ErrValidation):
		s.logger.Debug(ctx, "submission rejected", logger.String("operation", op), logger.Error(err))
		return
	case errors.Is(err, errs.ErrBusy):
		s.logger.Debug(ctx, "submission already in flight", logger.String("operation", op), logger.String("target", target))
		return
	default:
		s.logger.Warn(ctx, "submission failed",
			logger.String("operation", op),
			logger.String("user_id", userID),
			logger.String("target", target),
			logger.Error(err),
		)
	}

	s.record(ctx, model.JournalEntry{
		ID:       s.newID(),
		UserID:   userID,
		Kind:     kind,
		TargetID: target,
		Outcome:  outcome,
		Payload:  payload,
		At:       s.now().UTC(),
	})
}

func (s *Service) record(ctx context.Context, e model.JournalEntry) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn(ctx, "journal entry dropped",
			logger.String("entry_id", e.ID),
			logger.String("kind", string(e.Kind)),
			logger.Error(err),
		)
	}
}

// Activity returns userID's most recent journal entries, newest first.
func (s *Service) Activity(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	const op = "engine.activity"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	if s.journal == nil {
		return []model.JournalEntry{}, nil
	}
	entries, err := s.journal.Recent(ctx, userID, limit)
	if err != nil {
		return nil, errs.Wrap(op, errs.ErrRemote, "activity journal unavailable", err)
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}
	return entries, nil
}

// Stats reports engine state for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"inflight":      s.guard.Size(),
		"pageLimit":     s.pageLimit,
		"remoteTimeout": s.remoteTimeout.String(),
	}
	if n, err := s.sessions.Count(ctx); err == nil {
		stats["sessions"] = n
		metrics.UpdateActiveSessions(n)
	} else {
		s.logger.Warn(ctx, "session count failed", logger.Error(err))
	}
	if s.queue != nil {
		stats["journalQueueLength"] = s.queue.Len()
	}
	return stats
}

// Close releases the session store the service created itself.
func (s *Service) Close() error {
	if !s.ownsSessions {
		return nil
	}
	if c, ok := s.sessions.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Forget drops userID's session.
func (s *Service) Forget(ctx context.Context, userID string) error {
	unlock := s.lockUser(userID)
	defer unlock()
	return s.sessions.Delete(ctx, userID)
}

func requireUser(op, userID string) error {
	if userID == "" {
		return errs.Validation(op, "user id is required")
	}
	return nil
}

// emptyOnNotFound turns a NotFound answer of a list read into an empty list.
func emptyOnNotFound[T any](items []T, err error) ([]T, error) {
	if errors.Is(err, errs.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (s *Service) page(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.pageLimit
	}
	return page, limit
}
