package rest

import (
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/event"
	"github.com/frahmantamala/event-management/internal/notification"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/internal/user"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

var _ = Describe("RegisterAllRoutes", func() {
	var (
		cfg    *internal.Config
		router *chi.Mux
	)

	build := func() {
		sqlDB, _, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sqlDB.Close)

		router = chi.NewRouter()
		RegisterAllRoutes(router, Dependencies{
			Config:  cfg,
			Logger:  logger.Discard(),
			Metrics: observability.NewMetrics(prometheus.NewRegistry()),
			DB:      sqlx.NewDb(sqlDB, "sqlmock"),

			// Services are never reached: every request below stops at middleware.
			AuthHandler:         auth.NewHandler(nil),
			EventHandler:        event.NewHandler(nil),
			NotificationHandler: notification.NewHandler(nil),
			UserHandler:         user.NewHandler(nil),
		})
	}

	do := func(method, path string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		cfg = &internal.Config{Env: "development"}
		cfg.Server.AllowedOrigins = "*"
		cfg.Server.OpenAPIPath = "../../../api/openapi.yml"
		cfg.Observability.Metrics = internal.MetricsConfig{Enabled: true, Path: "/metrics"}
	})

	It("should serve ping under /api/v1 with a request id and secure headers", func() {
		build()

		rec := do(http.MethodGet, "/api/v1/ping", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-Request-ID")).NotTo(BeEmpty())
		Expect(rec.Header().Get("X-Frame-Options")).To(Equal("DENY"))
		Expect(rec.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
	})

	It("should echo a caller supplied request id", func() {
		build()

		rec := do(http.MethodGet, "/api/v1/ping", map[string]string{"X-Request-ID": "req-123"})

		Expect(rec.Header().Get("X-Request-ID")).To(Equal("req-123"))
	})

	DescribeTable("protected routes reject anonymous callers",
		func(method, path string) {
			build()
			rec := do(method, path, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		},
		Entry("create event", http.MethodPost, "/api/v1/events"),
		Entry("my events", http.MethodGet, "/api/v1/events/mine"),
		Entry("update event", http.MethodPut, "/api/v1/events/1"),
		Entry("delete event", http.MethodDelete, "/api/v1/events/1"),
		Entry("rsvp", http.MethodPost, "/api/v1/events/1/rsvp"),
		Entry("current user", http.MethodGet, "/api/v1/users/me"),
		Entry("notifications", http.MethodGet, "/api/v1/notifications"),
		Entry("mark all read", http.MethodPost, "/api/v1/notifications/read-all"),
	)

	It("should answer CORS preflight requests", func() {
		build()

		rec := do(http.MethodOptions, "/api/v1/events", map[string]string{
			"Origin":                        "http://localhost:3000",
			"Access-Control-Request-Method": http.MethodPost,
		})

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("should rate limit by client address", func() {
		cfg.RateLimit.RequestsPerMinute = 2
		build()

		Expect(do(http.MethodGet, "/api/v1/ping", nil).Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/api/v1/ping", nil).Code).To(Equal(http.StatusOK))

		rec := do(http.MethodGet, "/api/v1/ping", nil)
		Expect(rec.Code).To(Equal(http.StatusTooManyRequests))
		Expect(rec.Body.String()).To(ContainSubstring("RATE_LIMITED"))
	})

	It("should expose request metrics labelled by route pattern", func() {
		build()
		do(http.MethodGet, "/api/v1/ping", nil)

		rec := do(http.MethodGet, "/metrics", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		body, _ := io.ReadAll(rec.Body)
		Expect(string(body)).To(ContainSubstring(`event_management_http_requests_total{method="GET",route="/api/v1/ping",status="200"} 1`))
	})

	It("should skip the metrics endpoint when disabled", func() {
		cfg.Observability.Metrics.Enabled = false
		build()

		Expect(do(http.MethodGet, "/metrics", nil).Code).To(Equal(http.StatusNotFound))
	})

	It("should serve the OpenAPI document", func() {
		build()

		rec := do(http.MethodGet, "/openapi.yml", nil)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
	})
})
