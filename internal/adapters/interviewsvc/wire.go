package interviewsvc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/intervue/internal/domain/model"
)

// envelope is the response shape of every Interview Service endpoint.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*f = flexString(n.String())
	return nil
}

type wireAttribute struct {
	ID                      string   `json:"id"`
	MongoID                 string   `json:"_id"`
	Kind                    string   `json:"kind"`
	Type                    string   `json:"type"`
	Name                    string   `json:"name" validate:"required"`
	ExperienceYears         float64  `json:"experience" validate:"gte=0"`
	Level                   string   `json:"level"`
	TalentStatus            string   `json:"talentStatus"`
	InterviewerStatus       string   `json:"interviewerStatus" validate:"omitempty,oneof=NOT_APPLIED PENDING APPROVED REJECTED"`
	PerInterviewCharge      *float64 `json:"perInterviewCharge" validate:"omitempty,gt=0"`
	InterviewerActiveStatus string   `json:"interviewerActiveStatus" validate:"omitempty,oneof=ACTIVE INACTIVE"`

	id   string
	kind string
}

// normalize resolves aliases and upper-cases enums before validation.
func (w *wireAttribute) normalize() {
	w.id = firstNonEmpty(w.ID, w.MongoID)
	w.kind = strings.ToUpper(strings.TrimSpace(firstNonEmpty(w.Kind, w.Type)))
	w.InterviewerStatus = strings.ToUpper(strings.TrimSpace(w.InterviewerStatus))
	w.InterviewerActiveStatus = strings.ToUpper(strings.TrimSpace(w.InterviewerActiveStatus))
}

func (w *wireAttribute) check() error {
	if w.id == "" {
		return fmt.Errorf("attribute without id")
	}
	if !model.TalentKind(w.kind).IsValid() {
		return fmt.Errorf("attribute %s: unknown kind %q", w.id, w.kind)
	}
	return nil
}

func (w *wireAttribute) toModel() model.VerifiedAttribute {
	a := model.VerifiedAttribute{
		ID:                      w.id,
		Kind:                    model.TalentKind(w.kind),
		Name:                    w.Name,
		ExperienceYears:         w.ExperienceYears,
		Level:                   w.Level,
		TalentStatus:            strings.ToUpper(strings.TrimSpace(w.TalentStatus)),
		InterviewerStatus:       model.InterviewerStatus(w.InterviewerStatus),
		PerInterviewCharge:      w.PerInterviewCharge,
		InterviewerActiveStatus: model.ActiveStatus(w.InterviewerActiveStatus),
	}
	a.Normalize()
	return a
}

type wireBid struct {
	ID            string     `json:"id"`
	MongoID       string     `json:"_id"`
	InterviewID   string     `json:"interviewId"`
	InterviewerID string     `json:"interviewerId"`
	Fee           flexString `json:"fee"`
	Description   string     `json:"description"`
	Status        string     `json:"status" validate:"omitempty,oneof=PENDING ACCEPTED REJECTED"`
	CreatedAt     string     `json:"createdAt"`
}

func (w *wireBid) normalize() {
	w.ID = firstNonEmpty(w.ID, w.MongoID)
	w.Status = strings.ToUpper(strings.TrimSpace(w.Status))
}

func (w *wireBid) toModel() model.Bid {
	return model.Bid{
		ID:            w.ID,
		InterviewID:   w.InterviewID,
		InterviewerID: w.InterviewerID,
		Fee:           string(w.Fee),
		Description:   w.Description,
		Status:        model.BidStatus(w.Status),
		CreatedAt:     w.CreatedAt,
	}
}

// wireBids accepts either a list of bids or an object keyed by bid id.
type wireBids []wireBid

func (w *wireBids) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*w = nil
		return nil
	}
	if b[0] == '[' {
		var list []wireBid
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*w = list
		return nil
	}
	var byID map[string]wireBid
	if err := json.Unmarshal(b, &byID); err != nil {
		return fmt.Errorf("expected bid list or map: %w", err)
	}
	out := make([]wireBid, 0, len(byID))
	for id, bid := range byID {
		if bid.ID == "" && bid.MongoID == "" {
			bid.ID = id
		}
		out = append(out, bid)
	}
	*w = out
	return nil
}

type wireInterview struct {
	ID            string   `json:"id"`
	MongoID       string   `json:"_id"`
	TalentType    string   `json:"talentType" validate:"omitempty,oneof=SKILL DOMAIN"`
	TalentID      string   `json:"talentId"`
	TalentName    string   `json:"talentName"`
	InterviewDate string   `json:"interviewDate"`
	Description   string   `json:"description"`
	MeetingLink   string   `json:"meetingLink"`
	Status        string   `json:"interviewStatus" validate:"omitempty,oneof=PENDING SCHEDULED COMPLETED CANCELLED"`
	Category      string   `json:"category"`
	InterviewType string   `json:"interviewType"`
	CreatorID     string   `json:"creatorId"`
	InterviewerID string   `json:"interviewerId"`
	IntervieweeID string   `json:"intervieweeId"`
	Rating        *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	Feedback      *string  `json:"feedback"`
	UpdatedAt     string   `json:"updatedAt"`
	MyBid         *wireBid `json:"myBid"`
	InterviewBids wireBids `json:"interviewBids" validate:"dive"`
}

func (w *wireInterview) normalize() {
	w.ID = firstNonEmpty(w.ID, w.MongoID)
	w.TalentType = strings.ToUpper(strings.TrimSpace(w.TalentType))
	w.Status = strings.ToUpper(strings.TrimSpace(w.Status))
	w.Category = strings.ToUpper(strings.TrimSpace(w.Category))
	if w.MyBid != nil {
		w.MyBid.normalize()
	}
	for i := range w.InterviewBids {
		w.InterviewBids[i].normalize()
	}
}

// check enforces invariants the tags cannot express.
func (w *wireInterview) check() error {
	if w.ID == "" {
		return fmt.Errorf("interview without id")
	}
	if (w.Rating == nil) != (w.Feedback == nil) {
		return fmt.Errorf("interview %s: rating and feedback must be set together", w.ID)
	}
	return nil
}

func (w *wireInterview) toModel() model.Interview {
	it := model.Interview{
		ID:            w.ID,
		TalentType:    w.TalentType,
		TalentID:      w.TalentID,
		TalentName:    w.TalentName,
		InterviewDate: w.InterviewDate,
		Description:   w.Description,
		MeetingLink:   w.MeetingLink,
		Status:        model.InterviewStatus(w.Status),
		InterviewType: w.InterviewType,
		CreatorID:     w.CreatorID,
		InterviewerID: w.InterviewerID,
		IntervieweeID: w.IntervieweeID,
		Rating:        w.Rating,
		Feedback:      w.Feedback,
		UpdatedAt:     w.UpdatedAt,
	}
	if c, ok := model.ParseCategory(w.Category); ok {
		it.Category = c
	}
	if w.MyBid != nil {
		b := w.MyBid.toModel()
		it.MyBid = &b
	}
	for i := range w.InterviewBids {
		it.InterviewBids = append(it.InterviewBids, w.InterviewBids[i].toModel())
	}
	return it
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
