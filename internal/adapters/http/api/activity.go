package api

import (
	"context"
	"net/http"

	"github.com/okian/intervue/internal/domain/model"
)

// ActivityDependencies reads the activity journal.
type ActivityDependencies interface {
	Activity(ctx context.Context, userID string, limit int) ([]model.JournalEntry, error)
}

// ActivityHandler serves /activity.
type ActivityHandler struct {
	deps ActivityDependencies
}

// NewActivityHandler creates an activity handler.
func NewActivityHandler(deps ActivityDependencies) *ActivityHandler {
	return &ActivityHandler{deps: deps}
}

// HandleActivity handles GET /activity?limit=.
func (h *ActivityHandler) HandleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		writeEngineError(w, err)
		return
	}
	entries, err := h.deps.Activity(r.Context(), UserID(r.Context()), limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
