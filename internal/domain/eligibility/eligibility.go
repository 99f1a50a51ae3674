// Package eligibility projects an attribute registry onto the views used for
// interviewer applications, the interviewer management table and the bid
// scope selector.
package eligibility

import "github.com/okian/intervue/internal/domain/model"

// Views is the three-way projection of one registry snapshot.
type Views struct {
	EligibleSkills  []model.VerifiedAttribute `json:"eligibleSkills"`
	EligibleDomains []model.VerifiedAttribute `json:"eligibleDomains"`
	Interviewer     []model.VerifiedAttribute `json:"interviewer"`
	BidScopes       []model.VerifiedAttribute `json:"bidScopes"`
}

// EligibleForApplication returns attributes of kind that have not applied yet.
func EligibleForApplication(attrs []model.VerifiedAttribute, kind model.TalentKind) []model.VerifiedAttribute {
	return filter(attrs, func(a model.VerifiedAttribute) bool {
		return a.Kind == kind && status(a) == model.InterviewerNotApplied
	})
}

// VisibleInterviewerAttributes returns attributes that have applied, whatever
// the outcome.
func VisibleInterviewerAttributes(attrs []model.VerifiedAttribute) []model.VerifiedAttribute {
	return filter(attrs, func(a model.VerifiedAttribute) bool {
		return status(a) != model.InterviewerNotApplied
	})
}

// ApprovedSelectableForBidding returns approved interviewer attributes,
// regardless of their active flag.
func ApprovedSelectableForBidding(attrs []model.VerifiedAttribute) []model.VerifiedAttribute {
	return filter(attrs, func(a model.VerifiedAttribute) bool {
		return status(a) == model.InterviewerApproved
	})
}

// IsEligible reports whether attribute id may apply as interviewer.
func IsEligible(attrs []model.VerifiedAttribute, id string) bool {
	for _, a := range attrs {
		if a.ID == id {
			return status(a) == model.InterviewerNotApplied
		}
	}
	return false
}

// Project computes all views from one snapshot.
func Project(attrs []model.VerifiedAttribute) Views {
	return Views{
		EligibleSkills:  EligibleForApplication(attrs, model.KindSkill),
		EligibleDomains: EligibleForApplication(attrs, model.KindDomain),
		Interviewer:     VisibleInterviewerAttributes(attrs),
		BidScopes:       ApprovedSelectableForBidding(attrs),
	}
}

// status treats an unset interviewer status as NOT_APPLIED.
func status(a model.VerifiedAttribute) model.InterviewerStatus {
	if a.InterviewerStatus == "" {
		return model.InterviewerNotApplied
	}
	return a.InterviewerStatus
}

func filter(attrs []model.VerifiedAttribute, keep func(model.VerifiedAttribute) bool) []model.VerifiedAttribute {
	out := make([]model.VerifiedAttribute, 0, len(attrs))
	for _, a := range attrs {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
