package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/event-management/internal/transport"
)

type ServiceAPI interface {
	GetAllCategories(ctx context.Context) ([]CategoryResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context())
	if err != nil {
		h.Logger.Error("GetCategories: failed to get categories", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to get categories")
		return
	}

	h.WriteJSON(w, http.StatusOK, NewCategoriesResponse(categories))
}
