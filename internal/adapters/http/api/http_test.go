package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/intervue/internal/adapters/http/api"
	service "github.com/okian/intervue/internal/app"
	"github.com/okian/intervue/internal/domain/errs"
	"github.com/okian/intervue/internal/domain/history"
	"github.com/okian/intervue/internal/domain/lifecycle"
	"github.com/okian/intervue/internal/domain/model"
)

type mockEngine struct {
	err error

	lastUser     string
	lastCharge   float64
	lastFee      string
	lastFeedback lifecycle.Feedback
	lastHistory  service.HistoryQuery
	lastPage     int
	lastLimit    int
	lastScope    string
}

func (m *mockEngine) LoadAttributes(_ context.Context, userID string) (service.Registry, error) {
	m.lastUser = userID
	return service.Registry{Attributes: []model.VerifiedAttribute{{ID: "a1", Name: "Go"}}}, m.err
}

func (m *mockEngine) Eligibility(_ context.Context, userID, _ string) ([]model.VerifiedAttribute, error) {
	m.lastUser = userID
	return []model.VerifiedAttribute{}, m.err
}

func (m *mockEngine) Apply(_ context.Context, userID, attributeID string, charge float64) (model.VerifiedAttribute, error) {
	m.lastUser, m.lastCharge = userID, charge
	return model.VerifiedAttribute{ID: attributeID, InterviewerStatus: model.InterviewerPending}, m.err
}

func (m *mockEngine) ToggleActive(_ context.Context, userID, attributeID string) (model.VerifiedAttribute, error) {
	m.lastUser = userID
	return model.VerifiedAttribute{ID: attributeID, InterviewerActiveStatus: model.Active}, m.err
}

func (m *mockEngine) ListBiddable(_ context.Context, userID string, page, limit int, scope string) ([]model.Interview, error) {
	m.lastUser, m.lastPage, m.lastLimit, m.lastScope = userID, page, limit, scope
	return []model.Interview{{ID: "i1"}}, m.err
}

func (m *mockEngine) ListBidded(_ context.Context, userID string, page, limit int, scope string) ([]model.Interview, error) {
	m.lastUser, m.lastPage, m.lastLimit, m.lastScope = userID, page, limit, scope
	return []model.Interview{}, m.err
}

func (m *mockEngine) PlaceBid(_ context.Context, userID, interviewID, fee, description string) (model.Interview, error) {
	m.lastUser, m.lastFee = userID, fee
	return model.Interview{ID: interviewID, MyBid: &model.Bid{InterviewID: interviewID, Fee: fee, Description: description}}, m.err
}

func (m *mockEngine) SetScope(_ context.Context, userID, talentID string) (string, error) {
	m.lastUser = userID
	if talentID == "" {
		return "ALL", m.err
	}
	return talentID, m.err
}

func (m *mockEngine) ListCurrent(_ context.Context, userID, _ string) ([]model.Interview, error) {
	m.lastUser = userID
	return []model.Interview{{ID: "i1", Status: model.StatusPending}}, m.err
}

func (m *mockEngine) SubmitFeedback(_ context.Context, userID, interviewID string, f lifecycle.Feedback) (model.Interview, error) {
	m.lastUser, m.lastFeedback = userID, f
	return model.Interview{ID: interviewID, Status: model.StatusScheduled}, m.err
}

func (m *mockEngine) History(_ context.Context, userID string, q service.HistoryQuery) (history.Groups, error) {
	m.lastUser, m.lastHistory = userID, q
	return history.Groups{model.CategoryTalent: {}}, m.err
}

func (m *mockEngine) Dashboard(_ context.Context, userID string) (service.Dashboard, error) {
	m.lastUser = userID
	return service.Dashboard{Scope: "ALL"}, m.err
}

func (m *mockEngine) Activity(_ context.Context, userID string, limit int) ([]model.JournalEntry, error) {
	m.lastUser, m.lastLimit = userID, limit
	return []model.JournalEntry{{UserID: userID, Kind: model.JournalBid}}, m.err
}

type mockStats struct{}

func (mockStats) Stats(context.Context) map[string]any {
	return map[string]any{"sessions": 2}
}

func newMux(engine *mockEngine, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(engine, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target, body, user string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if user != "" {
		req.Header.Set(api.UserHeader, user)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	out := map[string]string{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a server in header auth mode", t, func() {
		engine := &mockEngine{}
		mux := newMux(engine)

		Convey("Health and stats need no user", func() {
			So(do(mux, http.MethodGet, "/healthz", "", "").Code, ShouldEqual, http.StatusOK)
			w := do(mux, http.MethodGet, "/stats", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"sessions":2`)
		})

		Convey("Engine routes reject a request without a user", func() {
			w := do(mux, http.MethodGet, "/attributes", "", "")
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
			So(decodeError(w)["code"], ShouldEqual, "unauthorized")
		})

		Convey("The acting user reaches the engine", func() {
			w := do(mux, http.MethodGet, "/attributes", "", "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(engine.lastUser, ShouldEqual, "u1")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("A caller supplied request id is echoed", func() {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.Header.Set(api.UserHeader, "u1")
			req.Header.Set(api.RequestIDHeader, "req-42")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-42")
		})

		Convey("Apply requires a charge", func() {
			w := do(mux, http.MethodPost, "/attributes/a1/apply", `{}`, "u1")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldEqual, "perInterviewCharge is required")

			w = do(mux, http.MethodPost, "/attributes/a1/apply", `{"perInterviewCharge":1500}`, "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(engine.lastCharge, ShouldEqual, 1500)
		})

		Convey("Malformed JSON is a validation error", func() {
			w := do(mux, http.MethodPost, "/bids", `{`, "u1")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "validation")
		})

		Convey("Bids accept a numeric or string fee", func() {
			w := do(mux, http.MethodPost, "/bids", `{"interviewId":"i1","fee":500,"description":"hi"}`, "u1")
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(engine.lastFee, ShouldEqual, "500")

			w = do(mux, http.MethodPost, "/bids", `{"interviewId":"i1","fee":"750.5"}`, "u1")
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(engine.lastFee, ShouldEqual, "750.5")
		})

		Convey("List paging comes from the query", func() {
			w := do(mux, http.MethodGet, "/bids/biddable?page=2&limit=5&scope=a1", "", "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(engine.lastPage, ShouldEqual, 2)
			So(engine.lastLimit, ShouldEqual, 5)
			So(engine.lastScope, ShouldEqual, "a1")

			So(do(mux, http.MethodGet, "/bids/bidded?page=-1", "", "u1").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Scope answers with the effective scope", func() {
			w := do(mux, http.MethodPut, "/bids/scope", `{"talentId":""}`, "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"scope":"ALL"`)
		})

		Convey("Feedback parses the action", func() {
			w := do(mux, http.MethodPost, "/interviews/i1/feedback", `{"rating":4,"feedback":"good","action":"reject"}`, "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(engine.lastFeedback.Action, ShouldEqual, lifecycle.ActionReject)
			So(*engine.lastFeedback.Rating, ShouldEqual, 4)

			w = do(mux, http.MethodPost, "/interviews/i1/feedback", `{"rating":4,"feedback":"good","action":"maybe"}`, "u1")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("History forwards every filter", func() {
			w := do(mux, http.MethodGet, "/interviews/history?role=creator&category=hire&type=skill&q=go&sort=desc", "", "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(engine.lastHistory, ShouldResemble, service.HistoryQuery{
				Role: "creator", Category: "hire", Type: "skill", Search: "go", Sort: "desc",
			})
		})

		Convey("Current interviews and activity are served", func() {
			So(do(mux, http.MethodGet, "/interviews/current?role=interviewer", "", "u1").Code, ShouldEqual, http.StatusOK)
			w := do(mux, http.MethodGet, "/activity?limit=10", "", "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(engine.lastLimit, ShouldEqual, 10)
		})

		Convey("Toggle is served", func() {
			w := do(mux, http.MethodPost, "/attributes/a1/toggle", "", "u1")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"interviewerActiveStatus":"ACTIVE"`)
		})
	})
}

func TestEngineErrorMapping(t *testing.T) {
	Convey("Given an engine that fails", t, func() {
		engine := &mockEngine{}
		mux := newMux(engine)

		cases := []struct {
			err    error
			status int
			code   string
		}{
			{errs.Validation("op", "fee must be positive"), http.StatusBadRequest, "validation"},
			{errs.New("op", errs.ErrNotFound, "no data"), http.StatusNotFound, "not_found"},
			{errs.New("op", errs.ErrBusy, "busy"), http.StatusConflict, "busy"},
			{errs.New("op", errs.ErrRemote, "upstream failed"), http.StatusBadGateway, "remote"},
		}
		for _, c := range cases {
			engine.err = c.err
			w := do(mux, http.MethodGet, "/bids/bidded", "", "u1")
			So(w.Code, ShouldEqual, c.status)
			So(decodeError(w)["code"], ShouldEqual, c.code)
		}

		Convey("Missing availability asks the client to configure it", func() {
			engine.err = errs.New("op", errs.ErrAvailabilityNotConfigured, "set up your availability first")
			w := do(mux, http.MethodPost, "/bids", `{"interviewId":"i1","fee":"500"}`, "u1")
			So(w.Code, ShouldEqual, http.StatusPreconditionFailed)
			body := decodeError(w)
			So(body["action"], ShouldEqual, "configure_availability")
			So(body["message"], ShouldEqual, "set up your availability first")
		})
	})
}

func TestTokenAuth(t *testing.T) {
	Convey("Given a server with a token secret", t, func() {
		const secret = "s3cret"
		engine := &mockEngine{}
		mux := newMux(engine, api.WithAuthenticator(api.NewAuthenticator(secret)))

		sign := func(key string, claims jwt.RegisteredClaims) string {
			tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
			So(err, ShouldBeNil)
			return tok
		}
		call := func(header string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("A valid token authenticates its subject", func() {
			tok := sign(secret, jwt.RegisteredClaims{
				Subject:   "u7",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			})
			So(call("Bearer "+tok).Code, ShouldEqual, http.StatusOK)
			So(engine.lastUser, ShouldEqual, "u7")
		})

		Convey("The user header alone is not enough", func() {
			So(do(mux, http.MethodGet, "/dashboard", "", "u1").Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A token signed with another key is rejected", func() {
			tok := sign("other", jwt.RegisteredClaims{Subject: "u7"})
			So(call("Bearer "+tok).Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("An expired token is rejected", func() {
			tok := sign(secret, jwt.RegisteredClaims{
				Subject:   "u7",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			})
			So(call("Bearer "+tok).Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("A token without a subject is rejected", func() {
			So(call("Bearer "+sign(secret, jwt.RegisteredClaims{})).Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}
