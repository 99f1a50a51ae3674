package model

// BidStatus is the arbitration state of a bid. Only the service moves a bid
// out of PENDING.
type BidStatus string

// Bid states.
const (
	BidPending  BidStatus = "PENDING"
	BidAccepted BidStatus = "ACCEPTED"
	BidRejected BidStatus = "REJECTED"
)

// Bid is an interviewer's offer on an interview.
type Bid struct {
	ID            string    `json:"id,omitempty"`
	InterviewID   string    `json:"interviewId"`
	InterviewerID string    `json:"interviewerId,omitempty"`
	Fee           string    `json:"fee"`
	Description   string    `json:"description"`
	Status        BidStatus `json:"status,omitempty"`
	CreatedAt     string    `json:"createdAt,omitempty"`
}
