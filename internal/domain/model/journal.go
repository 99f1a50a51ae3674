package model

import "time"

// JournalKind names the engine submission an entry records.
type JournalKind string

// Journal kinds.
const (
	JournalApplication JournalKind = "application"
	JournalToggle      JournalKind = "toggle"
	JournalBid         JournalKind = "bid"
	JournalFeedback    JournalKind = "feedback"
)

// OutcomeOK marks a successful submission. Failures carry the error label.
const OutcomeOK = "ok"

// JournalEntry is one line of the user's activity journal.
type JournalEntry struct {
	ID       string            `json:"id"`
	UserID   string            `json:"userId"`
	Kind     JournalKind       `json:"kind"`
	TargetID string            `json:"targetId"`
	Outcome  string            `json:"outcome"`
	Payload  map[string]string `json:"payload,omitempty"`
	At       time.Time         `json:"at"`
}
