package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/notification"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notification Handler", func() {
	var (
		service *notification.Service
		router  chi.Router
		caller  *auth.Identity
	)

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if caller != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), caller))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		service = notification.NewService(newMockRepository(), nil, logger.Discard())
		h := notification.NewHandler(service)
		h.Logger = logger.Discard()

		router = chi.NewRouter()
		router.Get("/notifications", h.ListNotifications)
		router.Patch("/notifications/{id}/read", h.MarkRead)
		router.Post("/notifications/read-all", h.MarkAllRead)

		caller = auth.NewIdentity(7, "u@example.com", "user", nil)
	})

	It("should list the caller's notifications", func() {
		_, err := service.Notify(context.Background(), 7, notification.TypeEventRSVP, "hi", nil)
		Expect(err).NotTo(HaveOccurred())

		rec := do(http.MethodGet, "/notifications")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var body notification.ListResult
		Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
		Expect(body.Total).To(Equal(int64(1)))
		Expect(body.Unread).To(Equal(int64(1)))
	})

	It("should answer 404 for someone else's notification", func() {
		n, _ := service.Notify(context.Background(), 8, notification.TypeEventRSVP, "not yours", nil)
		Expect(do(http.MethodPatch, "/notifications/"+strconv.FormatInt(n.ID, 10)+"/read").Code).To(Equal(http.StatusNotFound))
	})

	It("should mark all read", func() {
		_, _ = service.Notify(context.Background(), 7, notification.TypeEventRSVP, "a", nil)
		rec := do(http.MethodPost, "/notifications/read-all")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"updated":1`))
	})

	It("should answer 401 without an identity", func() {
		caller = nil
		Expect(do(http.MethodGet, "/notifications").Code).To(Equal(http.StatusUnauthorized))
	})
})
