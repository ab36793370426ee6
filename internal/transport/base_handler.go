package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

type ErrorResponse struct {
	Code      int         `json:"code"`
	ErrorCode string      `json:"error_code,omitempty"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Debug("http error", "status", status, "message", message)
	h.WriteJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// HandleServiceError maps AppErrors to their status and hides everything else behind a 500.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unhandled service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	message := appErr.GetDetailedMessage()
	if status >= http.StatusInternalServerError {
		h.Logger.Error("service error", "error", err)
		message = "internal server error"
	}

	h.WriteJSON(w, status, ErrorResponse{
		Code:      status,
		ErrorCode: string(appErr.Code),
		Message:   message,
		Details:   appErr.Details,
	})
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func (h *BaseHandler) DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}

// Pagination reads page and limit query params, clamping limit to [1, maxLimit].
func (h *BaseHandler) Pagination(r *http.Request, defaultLimit, maxLimit int) (page, limit int) {
	page, limit = 1, defaultLimit

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}
