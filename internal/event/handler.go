package event

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(ctx context.Context, id *auth.Identity, dto CreateEventDTO) (*Event, error)
	Get(ctx context.Context, eventID int64) (*Event, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	ListByOwner(ctx context.Context, id *auth.Identity, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, id *auth.Identity, eventID int64, dto UpdateEventDTO) (*Event, error)
	Delete(ctx context.Context, id *auth.Identity, eventID int64) error
	RSVP(ctx context.Context, id *auth.Identity, eventID int64) (*Event, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	var dto CreateEventDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("CreateEvent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Create(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	e, err := h.Service.Get(r.Context(), eventID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, limit := h.Pagination(r, DefaultLimit, MaxLimit)

	result, err := h.Service.List(r.Context(), ListFilter{
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// ListMyEvents returns events created by the caller.
func (h *Handler) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	page, limit := h.Pagination(r, DefaultLimit, MaxLimit)

	result, err := h.Service.ListByOwner(r.Context(), id, ListFilter{
		Category: r.URL.Query().Get("category"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var dto UpdateEventDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Warn("UpdateEvent: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.Service.Update(r.Context(), id, eventID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id, eventID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RSVP(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())
	eventID, ok := h.eventID(w, r)
	if !ok {
		return
	}

	e, err := h.Service.RSVP(r.Context(), id, eventID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	eventID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || eventID <= 0 {
		h.Logger.Warn("invalid event ID", "id", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid event ID")
		return 0, false
	}
	return eventID, true
}
