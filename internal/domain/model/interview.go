package model

import (
	"strings"
	"time"
)

// InterviewStatus is the lifecycle state of an interview.
type InterviewStatus string

// Lifecycle states. PENDING and SCHEDULED are current; COMPLETED and
// CANCELLED are terminal.
const (
	StatusPending   InterviewStatus = "PENDING"
	StatusScheduled InterviewStatus = "SCHEDULED"
	StatusCompleted InterviewStatus = "COMPLETED"
	StatusCancelled InterviewStatus = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s InterviewStatus) IsValid() bool {
	return s.IsCurrent() || s.IsTerminal()
}

// IsCurrent reports whether s is PENDING or SCHEDULED.
func (s InterviewStatus) IsCurrent() bool {
	return s == StatusPending || s == StatusScheduled
}

// IsTerminal reports whether s admits no further transition.
func (s InterviewStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Category is the fixed history classification of an interview.
type Category string

// History categories.
const (
	CategoryTalent      Category = "TALENT"
	CategoryInterviewer Category = "INTERVIEWER"
	CategoryProject     Category = "PROJECT"
	CategoryPeerToPeer  Category = "PEERTOPEER"
	CategoryHire        Category = "HIRE"
	CategoryGrowth      Category = "GROWTH"
)

// Categories lists the six history buckets in display order.
var Categories = []Category{
	CategoryTalent,
	CategoryInterviewer,
	CategoryProject,
	CategoryPeerToPeer,
	CategoryHire,
	CategoryGrowth,
}

// ParseCategory parses s case-insensitively.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Interview is a scheduled or biddable interview slot.
type Interview struct {
	ID            string          `json:"id"`
	TalentType    string          `json:"talentType,omitempty"`
	TalentID      string          `json:"talentId,omitempty"`
	TalentName    string          `json:"talentName,omitempty"`
	InterviewDate string          `json:"interviewDate,omitempty"`
	Description   string          `json:"description,omitempty"`
	MeetingLink   string          `json:"meetingLink,omitempty"`
	Status        InterviewStatus `json:"interviewStatus,omitempty"`
	Category      Category        `json:"category,omitempty"`
	InterviewType string          `json:"interviewType,omitempty"`
	CreatorID     string          `json:"creatorId,omitempty"`
	InterviewerID string          `json:"interviewerId,omitempty"`
	IntervieweeID string          `json:"intervieweeId,omitempty"`
	Rating        *int            `json:"rating,omitempty"`
	Feedback      *string         `json:"feedback,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
	MyBid         *Bid            `json:"myBid,omitempty"`
	InterviewBids []Bid           `json:"interviewBids,omitempty"`
}

// HasFeedback reports whether a rating/feedback pair is already recorded.
func (i Interview) HasFeedback() bool {
	return i.Rating != nil && i.Feedback != nil && strings.TrimSpace(*i.Feedback) != ""
}

// Date parses InterviewDate.
func (i Interview) Date() (time.Time, bool) {
	return ParseDate(i.InterviewDate)
}

// DateIn parses InterviewDate, reading zoneless values in loc.
func (i Interview) DateIn(loc *time.Location) (time.Time, bool) {
	return ParseDateIn(i.InterviewDate, loc)
}

// Updated parses UpdatedAt.
func (i Interview) Updated() (time.Time, bool) {
	return ParseDate(i.UpdatedAt)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseDate accepts the date shapes the Interview Service emits. It reports
// false for empty or unparseable input. Zoneless values are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	return ParseDateIn(s, time.UTC)
}

// ParseDateIn is ParseDate with zoneless values, including bare dates, read
// in loc.
func ParseDateIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Role is the side of an interview a user reads it from.
type Role string

// Interview roles.
const (
	RoleInterviewee Role = "interviewee"
	RoleInterviewer Role = "interviewer"
	RoleCreator     Role = "creator"
)

// ParseRole parses s case-insensitively. Empty input means interviewee.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return RoleInterviewee, true
	case RoleInterviewee, RoleInterviewer, RoleCreator:
		return r, true
	default:
		return "", false
	}
}
