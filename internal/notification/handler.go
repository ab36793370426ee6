package notification

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
	List(ctx context.Context, userID int64, page, limit int) (*ListResult, error)
	MarkRead(ctx context.Context, userID, id int64) (*Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
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

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, ErrUnauthenticated)
		return
	}

	page, limit := h.Pagination(r, DefaultLimit, MaxLimit)
	result, err := h.Service.List(r.Context(), id.ID, page, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, ErrUnauthenticated)
		return
	}

	raw := chi.URLParam(r, "id")
	notificationID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || notificationID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid notification ID")
		return
	}

	n, err := h.Service.MarkRead(r.Context(), id.ID, notificationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, ErrUnauthenticated)
		return
	}

	count, err := h.Service.MarkAllRead(r.Context(), id.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"updated": count})
}
