// Package model contains domain models passed between layers.
package model

import "strings"

// TalentKind distinguishes skill attributes from domain attributes.
type TalentKind string

// Talent kinds.
const (
	KindSkill  TalentKind = "SKILL"
	KindDomain TalentKind = "DOMAIN"
)

// IsValid reports whether k is a known kind.
func (k TalentKind) IsValid() bool {
	switch k {
	case KindSkill, KindDomain:
		return true
	default:
		return false
	}
}

// ParseTalentKind parses s case-insensitively.
func ParseTalentKind(s string) (TalentKind, bool) {
	k := TalentKind(strings.ToUpper(strings.TrimSpace(s)))
	return k, k.IsValid()
}

// InterviewerStatus is the state of an attribute's interviewer application.
type InterviewerStatus string

// Interviewer application states. APPROVED and REJECTED are only ever set by
// the external approver.
const (
	InterviewerNotApplied InterviewerStatus = "NOT_APPLIED"
	InterviewerPending    InterviewerStatus = "PENDING"
	InterviewerApproved   InterviewerStatus = "APPROVED"
	InterviewerRejected   InterviewerStatus = "REJECTED"
)

// IsValid reports whether s is a known interviewer status.
func (s InterviewerStatus) IsValid() bool {
	switch s {
	case InterviewerNotApplied, InterviewerPending, InterviewerApproved, InterviewerRejected:
		return true
	default:
		return false
	}
}

// ActiveStatus is the interviewer availability flag of an attribute.
type ActiveStatus string

// Availability flags.
const (
	Active   ActiveStatus = "ACTIVE"
	Inactive ActiveStatus = "INACTIVE"
)

// Flip returns the opposite flag.
func (s ActiveStatus) Flip() ActiveStatus {
	if s == Active {
		return Inactive
	}
	return Active
}

// TalentApproved is the certification state that unlocks the active toggle.
const TalentApproved = "APPROVED"

// VerifiedAttribute is a freelancer's certified skill or domain.
type VerifiedAttribute struct {
	ID                      string            `json:"id"`
	Kind                    TalentKind        `json:"kind"`
	Name                    string            `json:"name"`
	ExperienceYears         float64           `json:"experienceYears"`
	Level                   string            `json:"level,omitempty"`
	TalentStatus            string            `json:"talentStatus"`
	InterviewerStatus       InterviewerStatus `json:"interviewerStatus"`
	PerInterviewCharge      *float64          `json:"perInterviewCharge,omitempty"`
	InterviewerActiveStatus ActiveStatus      `json:"interviewerActiveStatus"`
}

// Normalize fills the interviewer defaults of a freshly certified attribute.
func (a *VerifiedAttribute) Normalize() {
	if a.InterviewerStatus == "" {
		a.InterviewerStatus = InterviewerNotApplied
	}
	if a.InterviewerActiveStatus == "" {
		a.InterviewerActiveStatus = Inactive
	}
}

// CanToggleActive reports whether the active flag may change.
func (a VerifiedAttribute) CanToggleActive() bool {
	return strings.EqualFold(a.TalentStatus, TalentApproved)
}
