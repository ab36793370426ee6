package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("filterSensitiveBody", func() {
	It("should mask sensitive keys at any depth", func() {
		out := filterSensitiveBody([]byte(`{"email":"a@b.c","password":"hunter22","tokens":{"access_token":"x"},"items":[{"secret":"s"}]}`))

		Expect(out).To(ContainSubstring(`"email":"a@b.c"`))
		Expect(out).NotTo(ContainSubstring("hunter22"))
		Expect(out).To(ContainSubstring(`"tokens":"[FILTERED]"`))
		Expect(out).To(ContainSubstring(`"secret":"[FILTERED]"`))
	})

	It("should drop non-JSON bodies that mention a sensitive field", func() {
		Expect(filterSensitiveBody([]byte("password=hunter22"))).To(Equal("[FILTERED - Contains sensitive data]"))
		Expect(filterSensitiveBody([]byte("plain text"))).To(Equal("plain text"))
		Expect(filterSensitiveBody(nil)).To(BeEmpty())
	})

	It("should mask authorization headers", func() {
		h := http.Header{}
		h.Set("Authorization", "Bearer abc")
		h.Set("Accept", "application/json")

		filtered := filterSensitiveHeaders(h)

		Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
		Expect(filtered["Accept"]).To(Equal("application/json"))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("should log without leaking the password and keep the body readable downstream", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewTextHandler(&buf, nil))

		var seen string
		h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := new(bytes.Buffer)
			b.ReadFrom(r.Body)
			seen = b.String()
			w.WriteHeader(http.StatusUnauthorized)
		}))

		body := `{"email":"a@b.c","password":"hunter22"}`
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body)))

		Expect(seen).To(Equal(body))
		Expect(buf.String()).NotTo(ContainSubstring("hunter22"))
		Expect(buf.String()).To(ContainSubstring("level=WARN"))
		Expect(buf.String()).To(ContainSubstring("status_code=401"))
	})
})

var _ = Describe("RequestID", func() {
	It("should expose the id to chi and the response", func() {
		var got string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = chiMiddleware.GetReqID(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(got).NotTo(BeEmpty())
		Expect(rec.Header().Get(RequestIDHeader)).To(Equal(got))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("should turn a panic into a JSON 500", func() {
		h := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		Expect(func() {
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		}).NotTo(Panic())

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(ContainSubstring("internal server error"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("boom"))
	})
})

var _ = Describe("RateLimitByIdentity", func() {
	serve := func(h http.Handler, userID int64) int {
		req := httptest.NewRequest(http.MethodPost, "/events/1/rsvp", nil)
		if userID != 0 {
			req = req.WithContext(auth.WithIdentity(req.Context(), auth.NewIdentity(userID, "u@example.com", "user", nil)))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	It("should budget each user separately", func() {
		h := RateLimitByIdentity(1)(okHandler)

		Expect(serve(h, 1)).To(Equal(http.StatusOK))
		Expect(serve(h, 1)).To(Equal(http.StatusTooManyRequests))
		Expect(serve(h, 2)).To(Equal(http.StatusOK))
	})

	It("should be a no-op when disabled", func() {
		h := RateLimitByIdentity(0)(okHandler)

		for i := 0; i < 5; i++ {
			Expect(serve(h, 1)).To(Equal(http.StatusOK))
		}
	})
})

var _ = Describe("Metrics", func() {
	It("should label requests with the route pattern", func() {
		reg := prometheus.NewRegistry()
		m := observability.NewMetrics(reg)

		r := chi.NewRouter()
		r.Use(Metrics(m))
		r.Get("/events/{id}", okHandler)

		for _, path := range []string{"/events/1", "/events/2"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		}

		Expect(testutil.GatherAndCount(reg, "event_management_http_requests_total")).To(Equal(1))
	})
})
