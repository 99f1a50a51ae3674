package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/intervue/internal/adapters/http/api"
	"github.com/okian/intervue/internal/bootstrap"
	"github.com/okian/intervue/internal/config"
	"github.com/okian/intervue/pkg/logger"
)

func newTestEngine(ctx context.Context, cfg *config.Config) *bootstrap.Engine {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /freelancer/u1/verified-attributes", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"_id":"a1","type":"SKILL","name":"Go","talentStatus":"APPROVED"}]}`)
	})
	remote := httptest.NewServer(mux)
	convey.Reset(remote.Close)

	cfg.ServiceURL = remote.URL
	cfg.JournalWorkers = 1
	engine, err := bootstrap.Build(ctx, cfg, logger.Nop())
	convey.So(err, convey.ShouldBeNil)
	convey.Reset(func() { _ = engine.Close(context.Background()) })
	return engine
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given the process mux", t, func() {
		ctx := context.Background()
		cfg := config.New()
		engine := newTestEngine(ctx, cfg)

		get := func(mux *http.ServeMux, path string, header http.Header) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			for k, v := range header {
				req.Header[http.CanonicalHeaderKey(k)] = v
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		convey.Convey("When no jwt secret is configured", func() {
			mux := newMux(ctx, cfg, engine, logger.Nop())

			convey.Convey("Then docs, probes and engine routes are served", func() {
				convey.So(get(mux, "/api-docs", nil).Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(mux, "/openapi.yaml", nil).Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(mux, "/healthz", nil).Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(mux, "/stats", nil).Code, convey.ShouldEqual, http.StatusOK)

				w := get(mux, "/attributes", http.Header{api.UserHeader: {"u1"}})
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"a1"`)
			})
		})

		convey.Convey("When a jwt secret is configured", func() {
			cfg.JWTSecret = "s3cret"
			mux := newMux(ctx, cfg, engine, logger.Nop())

			convey.Convey("Then the user header is refused and a token accepted", func() {
				convey.So(get(mux, "/attributes", http.Header{api.UserHeader: {"u1"}}).Code, convey.ShouldEqual, http.StatusUnauthorized)

				tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"}).SignedString([]byte("s3cret"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(get(mux, "/attributes", http.Header{"Authorization": {"Bearer " + tok}}).Code, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a running engine", t, func() {
		engine := newTestEngine(context.Background(), config.New())

		convey.Convey("Then the updater returns once its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startServiceMetricsUpdater(ctx, engine)
			}, convey.ShouldNotPanic)
		})
	})
}
