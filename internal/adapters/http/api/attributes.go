package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/model"
)

// AttributeDependencies covers the registry and application operations.
type AttributeDependencies interface {
	LoadAttributes(ctx context.Context, userID string) (service.Registry, error)
	Eligibility(ctx context.Context, userID, kind string) ([]model.VerifiedAttribute, error)
	Apply(ctx context.Context, userID, attributeID string, charge float64) (model.VerifiedAttribute, error)
	ToggleActive(ctx context.Context, userID, attributeID string) (model.VerifiedAttribute, error)
}

// AttributesHandler serves /attributes.
type AttributesHandler struct {
	deps     AttributeDependencies
	validate *validator.Validate
}

// NewAttributesHandler creates an attributes handler.
func NewAttributesHandler(deps AttributeDependencies, v *validator.Validate) *AttributesHandler {
	return &AttributesHandler{deps: deps, validate: v}
}

type applyRequest struct {
	PerInterviewCharge *float64 `json:"perInterviewCharge" validate:"required"`
}

// HandleList handles GET /attributes.
func (h *AttributesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	reg, err := h.deps.LoadAttributes(r.Context(), UserID(r.Context()))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// HandleEligible handles GET /attributes/eligible?kind=.
func (h *AttributesHandler) HandleEligible(w http.ResponseWriter, r *http.Request) {
	attrs, err := h.deps.Eligibility(r.Context(), UserID(r.Context()), r.URL.Query().Get("kind"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attrs)
}

// HandleApply handles POST /attributes/{id}/apply.
func (h *AttributesHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req applyRequest
	if err := decodeBody(r, h.validate, &req); err != nil {
		writeEngineError(w, err)
		return
	}
	a, err := h.deps.Apply(r.Context(), UserID(r.Context()), r.PathValue("id"), *req.PerInterviewCharge)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// HandleToggle handles POST /attributes/{id}/toggle.
func (h *AttributesHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	a, err := h.deps.ToggleActive(r.Context(), UserID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
