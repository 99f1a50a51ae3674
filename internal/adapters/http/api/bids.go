package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/intervue/internal/domain/model"
)

// BidDependencies covers the bid board operations.
type BidDependencies interface {
	ListBiddable(ctx context.Context, userID string, page, limit int, scope string) ([]model.Interview, error)
	ListBidded(ctx context.Context, userID string, page, limit int, scope string) ([]model.Interview, error)
	PlaceBid(ctx context.Context, userID, interviewID, fee, description string) (model.Interview, error)
	SetScope(ctx context.Context, userID, talentID string) (string, error)
}

// BidsHandler serves /bids.
type BidsHandler struct {
	deps     BidDependencies
	validate *validator.Validate
}

// NewBidsHandler creates a bids handler.
func NewBidsHandler(deps BidDependencies, v *validator.Validate) *BidsHandler {
	return &BidsHandler{deps: deps, validate: v}
}

type bidRequest struct {
	InterviewID string     `json:"interviewId" validate:"required"`
	Fee         flexString `json:"fee"`
	Description string     `json:"description"`
}

type scopeRequest struct {
	TalentID string `json:"talentId"`
}

type scopeResponse struct {
	Scope string `json:"scope"`
}

type listFunc func(ctx context.Context, userID string, page, limit int, scope string) ([]model.Interview, error)

// HandleBiddable handles GET /bids/biddable.
func (h *BidsHandler) HandleBiddable(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.deps.ListBiddable)
}

// HandleBidded handles GET /bids/bidded.
func (h *BidsHandler) HandleBidded(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.deps.ListBidded)
}

func (h *BidsHandler) list(w http.ResponseWriter, r *http.Request, fn listFunc) {
	page, err := intQuery(r, "page")
	if err != nil {
		writeEngineError(w, err)
		return
	}
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeEngineError(w, err)
		return
	}
	items, err := fn(r.Context(), UserID(r.Context()), page, limit, r.URL.Query().Get("scope"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandlePlace handles POST /bids.
func (h *BidsHandler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req bidRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	it, err := h.deps.PlaceBid(r.Context(), UserID(r.Context()), req.InterviewID, string(req.Fee), req.Description)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// HandleScope handles PUT /bids/scope.
func (h *BidsHandler) HandleScope(w http.ResponseWriter, r *http.Request) {
	var req scopeRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	scope, err := h.deps.SetScope(r.Context(), UserID(r.Context()), req.TalentID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scopeResponse{Scope: scope})
}
