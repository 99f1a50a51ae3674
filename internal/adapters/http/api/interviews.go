package api

import (
	"context"
	"net/http"

	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/history"
	"github.com/okian/intervue/internal/domain/lifecycle"
	"github.com/okian/intervue/internal/domain/model"
)

// InterviewDependencies covers current interviews, feedback and history.
type InterviewDependencies interface {
	ListCurrent(ctx context.Context, userID, role string) ([]model.Interview, error)
	SubmitFeedback(ctx context.Context, userID, interviewID string, f lifecycle.Feedback) (model.Interview, error)
	History(ctx context.Context, userID string, q service.HistoryQuery) (history.Groups, error)
}

// InterviewsHandler serves /interviews.
type InterviewsHandler struct {
	deps InterviewDependencies
}

// NewInterviewsHandler creates an interviews handler.
func NewInterviewsHandler(deps InterviewDependencies) *InterviewsHandler {
	return &InterviewsHandler{deps: deps}
}

type feedbackRequest struct {
	Rating   *int   `json:"rating"`
	Feedback string `json:"feedback"`
	Action   string `json:"action"`
}

// HandleCurrent handles GET /interviews/current?role=.
func (h *InterviewsHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	items, err := h.deps.ListCurrent(r.Context(), UserID(r.Context()), r.URL.Query().Get("role"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleFeedback handles POST /interviews/{id}/feedback.
func (h *InterviewsHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.feedback"
	var req feedbackRequest
	if err := decodeBody(r, nil, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	action, ok := lifecycle.ParseAction(req.Action)
	if !ok {
		writeEngineError(w, errs.Validation(op, "action must be confirm or reject"))
		return
	}
	it, err := h.deps.SubmitFeedback(r.Context(), UserID(r.Context()), r.PathValue("id"), lifecycle.Feedback{
		Rating:   req.Rating,
		Feedback: req.Feedback,
		Action:   action,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// HandleHistory handles GET /interviews/history.
func (h *InterviewsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	groups, err := h.deps.History(r.Context(), UserID(r.Context()), service.HistoryQuery{
		Role:     q.Get("role"),
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Search:   q.Get("q"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
