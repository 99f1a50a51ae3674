package api

import (
	"context"
	"net/http"

	service "github.com/okian/intervue/internal/app"
)

// DashboardDependencies loads the interviewer page in one call.
type DashboardDependencies interface {
	Dashboard(ctx context.Context, userID string) (service.Dashboard, error)
}

// DashboardHandler serves /dashboard.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleDashboard handles GET /dashboard.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.deps.Dashboard(r.Context(), UserID(r.Context()))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
