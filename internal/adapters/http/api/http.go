// Package api exposes the engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/pkg/logger"
)

// Server wires HTTP routes for the engine API.
type Server struct {
	auth   *Authenticator
	logger logger.Logger

	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	attributesHandler *AttributesHandler
	bidsHandler       *BidsHandler
	interviewsHandler *InterviewsHandler
	dashboardHandler  *DashboardHandler
	activityHandler   *ActivityHandler
}

// Dependencies is the engine surface the handlers need.
type Dependencies interface {
	AttributeDependencies
	BidDependencies
	InterviewDependencies
	DashboardDependencies
	ActivityDependencies
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		auth:   NewAuthenticator(""),
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	v := validator.New()
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.attributesHandler = NewAttributesHandler(deps, v)
	s.bidsHandler = NewBidsHandler(deps, v)
	s.interviewsHandler = NewInterviewsHandler(deps)
	s.dashboardHandler = NewDashboardHandler(deps)
	s.activityHandler = NewActivityHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	s.route(mux, "GET /attributes", "attributes", s.attributesHandler.HandleList)
	s.route(mux, "GET /attributes/eligible", "attributes_eligible", s.attributesHandler.HandleEligible)
	s.route(mux, "POST /attributes/{id}/apply", "attributes_apply", s.attributesHandler.HandleApply)
	s.route(mux, "POST /attributes/{id}/toggle", "attributes_toggle", s.attributesHandler.HandleToggle)

	s.route(mux, "GET /bids/biddable", "bids_biddable", s.bidsHandler.HandleBiddable)
	s.route(mux, "GET /bids/bidded", "bids_bidded", s.bidsHandler.HandleBidded)
	s.route(mux, "POST /bids", "bids_place", s.bidsHandler.HandlePlace)
	s.route(mux, "PUT /bids/scope", "bids_scope", s.bidsHandler.HandleScope)

	s.route(mux, "GET /dashboard", "dashboard", s.dashboardHandler.HandleDashboard)

	s.route(mux, "GET /interviews/current", "interviews_current", s.interviewsHandler.HandleCurrent)
	s.route(mux, "POST /interviews/{id}/feedback", "interviews_feedback", s.interviewsHandler.HandleFeedback)
	s.route(mux, "GET /interviews/history", "interviews_history", s.interviewsHandler.HandleHistory)

	s.route(mux, "GET /activity", "activity", s.activityHandler.HandleActivity)
}

func (s *Server) route(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, MetricsMiddleware(RequestLogger(s.logger, s.auth.Middleware(h)), endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeEngineError maps an engine error kind to its HTTP status.
func writeEngineError(w http.ResponseWriter, err error) {
	resp := errorResponse{Code: errs.Label(err), Message: errs.Message(err)}
	status := http.StatusBadGateway
	switch errs.KindOf(err) {
	case errs.ErrValidation:
		status = http.StatusBadRequest
	case errs.ErrNotFound:
		status = http.StatusNotFound
	case errs.ErrBusy:
		status = http.StatusConflict
	case errs.ErrAvailabilityNotConfigured:
		status = http.StatusPreconditionFailed
		resp.Action = "configure_availability"
	}
	writeJSON(w, status, resp)
}

// decodeBody reads a JSON body into dst and validates its tags.
func decodeBody(r *http.Request, v *validator.Validate, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errs.Wrap("api.decode", errs.ErrValidation, "malformed JSON body", err)
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		var fe validator.ValidationErrors
		if errors.As(err, &fe) && len(fe) > 0 {
			return errs.Validation("api.decode", fieldMessage(fe[0]))
		}
		return errs.Wrap("api.decode", errs.ErrValidation, "invalid body", err)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	if name != "" {
		name = strings.ToLower(name[:1]) + name[1:]
	}
	switch fe.Tag() {
	case "required":
		return name + " is required"
	default:
		return name + " is invalid"
	}
}

// intQuery parses an optional non-negative integer query parameter.
func intQuery(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errs.Validation("api.query", key+" must be a non-negative integer")
	}
	return n, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

var _ Dependencies = (*service.Service)(nil)
