package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/okian/intervue/internal/domain/eligibility"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/inflight"
	"github.com/okian/intervue/internal/domain/model"
	"github.com/okian/intervue/internal/domain/optimistic"
	"github.com/okian/intervue/pkg/logger"
	"github.com/okian/intervue/pkg/metrics"
)

// Registry is a user's attribute registry with its eligibility views.
type Registry struct {
	Attributes []model.VerifiedAttribute `json:"attributes"`
	eligibility.Views
}

func newRegistry(attrs []model.VerifiedAttribute) Registry {
	if attrs == nil {
		attrs = []model.VerifiedAttribute{}
	}
	return Registry{Attributes: attrs, Views: eligibility.Project(attrs)}
}

// LoadAttributes refreshes userID's registry from the Interview Service.
func (s *Service) LoadAttributes(ctx context.Context, userID string) (Registry, error) {
	const op = "engine.load_attributes"
	if err := requireUser(op, userID); err != nil {
		return Registry{}, err
	}
	attrs, err := emptyOnNotFound(s.remote.VerifiedAttributes(ctx, userID))
	if err != nil {
		s.logger.Warn(ctx, "attribute refresh failed", logger.String("user_id", userID), logger.Error(err))
		return Registry{}, err
	}
	sess, err := s.update(ctx, userID, func(sess *model.Session) error {
		sess.Attributes = attrs
		sess.AttributesLoaded = true
		return nil
	})
	if err != nil {
		return Registry{}, err
	}
	return newRegistry(sess.Attributes), nil
}

// Attributes returns userID's registry, loading it on first use.
func (s *Service) Attributes(ctx context.Context, userID string) (Registry, error) {
	attrs, err := s.attributes(ctx, userID)
	if err != nil {
		return Registry{}, err
	}
	return newRegistry(attrs), nil
}

// Eligibility returns the attributes of kind that may still apply.
func (s *Service) Eligibility(ctx context.Context, userID, kind string) ([]model.VerifiedAttribute, error) {
	const op = "engine.eligibility"
	k, ok := model.ParseTalentKind(kind)
	if !ok {
		return nil, errs.Validation(op, "kind must be SKILL or DOMAIN")
	}
	attrs, err := s.attributes(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := eligibility.EligibleForApplication(attrs, k)
	if out == nil {
		out = []model.VerifiedAttribute{}
	}
	return out, nil
}

func (s *Service) attributes(ctx context.Context, userID string) ([]model.VerifiedAttribute, error) {
	const op = "engine.attributes"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}
	sess, err := s.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.AttributesLoaded {
		return sess.Attributes, nil
	}
	reg, err := s.LoadAttributes(ctx, userID)
	if err != nil {
		return nil, err
	}
	return reg.Attributes, nil
}

// Apply submits an interviewer application for one eligible attribute at
// the given per-interview charge. Local state changes only after the
// service accepts.
func (s *Service) Apply(ctx context.Context, userID, attributeID string, charge float64) (model.VerifiedAttribute, error) {
	const op = "engine.apply"
	attributeID = strings.TrimSpace(attributeID)
	payload := map[string]string{"perInterviewCharge": strconv.FormatFloat(charge, 'f', -1, 64)}

	release, err := s.acquire(ctx, "apply", inflight.Key("apply", userID, attributeID))
	if err != nil {
		s.finish(ctx, userID, model.JournalApplication, attributeID, payload, err)
		return model.VerifiedAttribute{}, err
	}
	defer release()

	a, err := s.prepareApply(ctx, op, userID, attributeID, charge)
	if err != nil {
		s.finish(ctx, userID, model.JournalApplication, attributeID, payload, err)
		return model.VerifiedAttribute{}, err
	}

	rctx, cancel := s.detach(ctx)
	ack, err := s.remote.ApplyInterviewer(rctx, userID, attributeID, charge)
	cancel()
	if err != nil {
		s.finish(ctx, userID, model.JournalApplication, attributeID, payload, err)
		return model.VerifiedAttribute{}, err
	}

	a.InterviewerStatus = ack.InterviewerStatus
	if a.InterviewerStatus == "" || a.InterviewerStatus == model.InterviewerNotApplied {
		a.InterviewerStatus = model.InterviewerPending
	}
	applied := charge
	a.PerInterviewCharge = &applied

	_, err = s.update(context.WithoutCancel(ctx), userID, func(sess *model.Session) error {
		sess.PutAttribute(a)
		return nil
	})
	s.finish(ctx, userID, model.JournalApplication, attributeID, payload, err)
	if err != nil {
		return model.VerifiedAttribute{}, err
	}
	return a, nil
}

func (s *Service) prepareApply(ctx context.Context, op, userID, attributeID string, charge float64) (model.VerifiedAttribute, error) {
	if err := requireUser(op, userID); err != nil {
		return model.VerifiedAttribute{}, err
	}
	if attributeID == "" {
		return model.VerifiedAttribute{}, errs.Validation(op, "attribute id is required")
	}
	if math.IsNaN(charge) || math.IsInf(charge, 0) || charge <= 0 {
		return model.VerifiedAttribute{}, errs.Validation(op, "per-interview charge must be a positive number")
	}
	attrs, err := s.attributes(ctx, userID)
	if err != nil {
		return model.VerifiedAttribute{}, err
	}
	if !eligibility.IsEligible(attrs, attributeID) {
		return model.VerifiedAttribute{}, errs.Validation(op, "attribute is not eligible for an interviewer application")
	}
	for _, a := range attrs {
		if a.ID == attributeID {
			return a, nil
		}
	}
	return model.VerifiedAttribute{}, errs.Validation(op, "attribute is not eligible for an interviewer application")
}

// ToggleActive flips an approved attribute's availability flag. The flip is
// visible immediately and rolled back when the service refuses it.
func (s *Service) ToggleActive(ctx context.Context, userID, attributeID string) (model.VerifiedAttribute, error) {
	const op = "engine.toggle_active"
	attributeID = strings.TrimSpace(attributeID)

	release, err := s.acquire(ctx, "toggle", inflight.Key("toggle", userID, attributeID))
	if err != nil {
		s.finish(ctx, userID, model.JournalToggle, attributeID, nil, err)
		return model.VerifiedAttribute{}, err
	}
	defer release()

	a, err := s.prepareToggle(ctx, op, userID, attributeID)
	if err != nil {
		s.finish(ctx, userID, model.JournalToggle, attributeID, nil, err)
		return model.VerifiedAttribute{}, err
	}

	prev := a.InterviewerActiveStatus
	if prev == "" {
		prev = model.Inactive
	}
	next := prev.Flip()
	payload := map[string]string{"from": string(prev), "to": string(next)}
	sctx := context.WithoutCancel(ctx)

	cmd := optimistic.Command[model.ActiveStatus]{
		Previous: prev,
		Next:     next,
		Apply: func(ctx context.Context, v model.ActiveStatus) error {
			_, err := s.update(ctx, userID, func(sess *model.Session) error {
				cur, ok := sess.Attribute(attributeID)
				if !ok {
					return errs.New(op, errs.ErrNotFound, "attribute not found")
				}
				cur.InterviewerActiveStatus = v
				sess.PutAttribute(cur)
				return nil
			})
			return err
		},
		Confirm: func(ctx context.Context) (model.ActiveStatus, error) {
			rctx, cancel := s.detach(ctx)
			defer cancel()
			ack, err := s.remote.SetInterviewerActive(rctx, userID, attributeID, next)
			if err != nil {
				return prev, err
			}
			if ack.InterviewerActiveStatus == "" {
				return next, nil
			}
			return ack.InterviewerActiveStatus, nil
		},
		OnRollback: func(err error) {
			metrics.RecordToggleRollback()
			s.logger.Warn(sctx, "availability toggle rolled back",
				logger.String("user_id", userID),
				logger.String("attribute_id", attributeID),
				logger.String("restored", string(prev)),
				logger.Error(err),
			)
		},
	}

	confirmed, err := cmd.Execute(sctx)
	s.finish(ctx, userID, model.JournalToggle, attributeID, payload, err)
	if err != nil {
		return model.VerifiedAttribute{}, err
	}
	a.InterviewerActiveStatus = confirmed
	return a, nil
}

func (s *Service) prepareToggle(ctx context.Context, op, userID, attributeID string) (model.VerifiedAttribute, error) {
	if err := requireUser(op, userID); err != nil {
		return model.VerifiedAttribute{}, err
	}
	if attributeID == "" {
		return model.VerifiedAttribute{}, errs.Validation(op, "attribute id is required")
	}
	attrs, err := s.attributes(ctx, userID)
	if err != nil {
		return model.VerifiedAttribute{}, err
	}
	for _, a := range attrs {
		if a.ID != attributeID {
			continue
		}
		if !a.CanToggleActive() {
			return model.VerifiedAttribute{}, errs.Validation(op, "only approved attributes can change availability")
		}
		return a, nil
	}
	return model.VerifiedAttribute{}, errs.Validation(op, "unknown attribute")
}
