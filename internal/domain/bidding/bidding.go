// Package bidding holds the pure rules of the interviewer bid board: bid
// validation, ordering of the two interview sets, scope filtering and the
// local biddable-to-bidded move.
package bidding

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/model"
)

// Board is the pair of disjoint interview sets of one interviewer.
type Board struct {
	Biddable []model.Interview `json:"biddable"`
	Bidded   []model.Interview `json:"bidded"`
}

// ParseFee parses a positive, finite fee.
func ParseFee(fee string) (float64, error) {
	const op = "bidding.parse_fee"
	v, err := strconv.ParseFloat(strings.TrimSpace(fee), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errs.Validation(op, "fee must be a positive number")
	}
	return v, nil
}

// NewBid validates the input of a bid and returns the normalized bid.
func NewBid(interviewID, fee, description string) (model.Bid, error) {
	const op = "bidding.new_bid"
	interviewID = strings.TrimSpace(interviewID)
	if interviewID == "" {
		return model.Bid{}, errs.Validation(op, "interview id is required")
	}
	if _, err := ParseFee(fee); err != nil {
		return model.Bid{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Bid{}, errs.Validation(op, "description is required")
	}
	return model.Bid{
		InterviewID: interviewID,
		Fee:         strings.TrimSpace(fee),
		Description: description,
		Status:      model.BidPending,
	}, nil
}

// Contains reports whether items holds an interview with id.
func Contains(items []model.Interview, id string) bool {
	return index(items, id) >= 0
}

// Move removes interview id from the biddable set and records it in the
// bidded set with bid attached. An interview unknown to the biddable set is
// added to bidded as a stub so the placed bid stays visible until the next
// refresh.
func (b *Board) Move(id string, bid model.Bid) {
	it := model.Interview{ID: id}
	if i := index(b.Biddable, id); i >= 0 {
		it = b.Biddable[i]
		b.Biddable = slices.Delete(slices.Clone(b.Biddable), i, i+1)
	}
	it.MyBid = &bid
	if i := index(b.Bidded, id); i >= 0 {
		b.Bidded = slices.Clone(b.Bidded)
		b.Bidded[i] = it
		return
	}
	b.Bidded = append([]model.Interview{it}, b.Bidded...)
}

// Reconcile merges a refreshed bidded list with the locally placed entry for
// id, keeping the local entry when the refresh does not know it yet and the
// local bid when the refreshed entry carries none. Biddable entries already
// bid on are dropped.
func (b *Board) Reconcile(refreshed []model.Interview, id string) {
	local := -1
	if id != "" {
		local = index(b.Bidded, id)
	}
	out := slices.Clone(refreshed)
	if local >= 0 {
		switch i := index(out, id); {
		case i < 0:
			out = append(out, b.Bidded[local])
		case out[i].MyBid == nil:
			out[i].MyBid = b.Bidded[local].MyBid
		}
	}
	b.Bidded = out
	b.Biddable = slices.DeleteFunc(slices.Clone(b.Biddable), func(it model.Interview) bool {
		return Contains(b.Bidded, it.ID)
	})
}

// SortBiddable orders soonest interview first. Undated interviews go last.
func SortBiddable(items []model.Interview) {
	slices.SortStableFunc(items, func(a, b model.Interview) int {
		return compareMissingLast(a.Date, b.Date, false)
	})
}

// SortBidded orders most recently updated first. Undated interviews go last.
func SortBidded(items []model.Interview) {
	slices.SortStableFunc(items, func(a, b model.Interview) int {
		return compareMissingLast(a.Updated, b.Updated, true)
	})
}

// FilterScope keeps interviews whose talent id equals scope. An empty scope
// or ALL keeps everything.
func FilterScope(items []model.Interview, scope string) []model.Interview {
	scope = strings.TrimSpace(scope)
	if scope == "" || strings.EqualFold(scope, model.ScopeAll) {
		return slices.Clone(items)
	}
	out := make([]model.Interview, 0, len(items))
	for _, it := range items {
		if it.TalentID == scope {
			out = append(out, it)
		}
	}
	return out
}

func index(items []model.Interview, id string) int {
	return slices.IndexFunc(items, func(it model.Interview) bool { return it.ID == id })
}

func compareMissingLast(a, b func() (time.Time, bool), desc bool) int {
	ta, okA := a()
	tb, okB := b()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	c := ta.Compare(tb)
	if desc {
		return -c
	}
	return c
}
