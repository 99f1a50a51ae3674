package model

import (
	"slices"
	"time"
)

// ScopeAll disables the bid-scope filter.
const ScopeAll = "ALL"

// Session is the private state one acting user holds between requests:
// the attribute registry, the two bid sets and the interviews seen through
// current/history reads.
type Session struct {
	UserID           string               `json:"userId"`
	Attributes       []VerifiedAttribute  `json:"attributes"`
	AttributesLoaded bool                 `json:"attributesLoaded"`
	Biddable         []Interview          `json:"biddable"`
	BiddableLoaded   bool                 `json:"biddableLoaded"`
	Bidded           []Interview          `json:"bidded"`
	BiddedLoaded     bool                 `json:"biddedLoaded"`
	Interviews       map[string]Interview `json:"interviews"`
	Scope            string               `json:"scope"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// NewSession returns an empty session for userID.
func NewSession(userID string) *Session {
	return &Session{
		UserID:     userID,
		Interviews: make(map[string]Interview),
		Scope:      ScopeAll,
	}
}

// Clone returns a copy that shares no slices or maps with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Attributes = slices.Clone(s.Attributes)
	out.Biddable = slices.Clone(s.Biddable)
	out.Bidded = slices.Clone(s.Bidded)
	out.Interviews = make(map[string]Interview, len(s.Interviews))
	for k, v := range s.Interviews {
		out.Interviews[k] = v
	}
	return &out
}

// Attribute returns the attribute with id.
func (s *Session) Attribute(id string) (VerifiedAttribute, bool) {
	for _, a := range s.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return VerifiedAttribute{}, false
}

// PutAttribute replaces the attribute with the same id, or appends it.
func (s *Session) PutAttribute(a VerifiedAttribute) {
	for i := range s.Attributes {
		if s.Attributes[i].ID == a.ID {
			s.Attributes[i] = a
			return
		}
	}
	s.Attributes = append(s.Attributes, a)
}

// RememberInterviews caches interviews by id for later feedback submission.
func (s *Session) RememberInterviews(items []Interview) {
	if s.Interviews == nil {
		s.Interviews = make(map[string]Interview, len(items))
	}
	for _, it := range items {
		if it.ID != "" {
			s.Interviews[it.ID] = it
		}
	}
}
