package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/event-management/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID honours an incoming X-Request-ID or mints a uuid, and exposes it
// both to chi's GetReqID and to the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), chiMiddleware.RequestIDKey, reqID)
		ctx = logger.With(ctx, "request_id", reqID)

		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
