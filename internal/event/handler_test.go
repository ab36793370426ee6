package event_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/event"
	"github.com/frahmantamala/event-management/internal/permission"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event Handler", func() {
	var (
		repo   *mockRepository
		router chi.Router
		caller *auth.Identity
		seeded *event.Event
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		if caller != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), caller))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		repo = newMockRepository()
		svc := event.NewService(repo, &recordingPublisher{}, nil, logger.Discard())
		h := event.NewHandler(svc)
		h.Logger = logger.Discard()

		router = chi.NewRouter()
		router.Get("/events", h.ListEvents)
		router.Post("/events", h.CreateEvent)
		router.Get("/events/{id}", h.GetEvent)
		router.Put("/events/{id}", h.UpdateEvent)
		router.Delete("/events/{id}", h.DeleteEvent)
		router.Post("/events/{id}/rsvp", h.RSVP)

		caller = auth.NewIdentity(1, "u@example.com", "user", permission.RolePermissionNames(permission.RoleUser))
		seeded = repo.seed(&event.Event{UserID: 2, Title: "Seeded", Category: event.CategorySocial, RSVPCount: 5})
	})

	It("should create events with 201", func() {
		rec := do(http.MethodPost, "/events", `{"title":"T","date":"2026-12-01","category":"Social"}`)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		var body event.Event
		Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
		Expect(body.UserID).To(Equal(int64(1)))
	})

	It("should answer 400 with field details for invalid payloads", func() {
		rec := do(http.MethodPost, "/events", `{"title":"","date":"2026-12-01","category":"Rave"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 404 for missing events", func() {
		Expect(do(http.MethodGet, "/events/999", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should answer 400 for malformed ids", func() {
		Expect(do(http.MethodGet, "/events/abc", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("should answer 403 when updating someone else's event", func() {
		rec := do(http.MethodPut, "/events/1", `{"title":"Mine now"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 404 rather than 403 for a missing event on delete", func() {
		Expect(do(http.MethodDelete, "/events/999", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should record an RSVP and return the updated count", func() {
		rec := do(http.MethodPost, "/events/1/rsvp", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body event.Event
		Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
		Expect(body.ID).To(Equal(seeded.ID))
		Expect(body.RSVPCount).To(Equal(int64(6)))
	})

	It("should answer 401 for anonymous RSVPs", func() {
		caller = nil
		Expect(do(http.MethodPost, "/events/1/rsvp", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("should list events with paging metadata", func() {
		rec := do(http.MethodGet, "/events?limit=5", "")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body event.ListResult
		Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
		Expect(body.Total).To(Equal(int64(1)))
		Expect(body.Limit).To(Equal(5))
	})
})
