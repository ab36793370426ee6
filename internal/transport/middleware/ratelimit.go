package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/go-chi/httprate"
)

// RateLimitByIP caps requests per client address. A non-positive limit disables it.
func RateLimitByIP(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return passthrough
	}
	return httprate.Limit(requestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

// RateLimitByIdentity keys on the authenticated user and falls back to the
// client address for anonymous requests. Mount it after the auth middleware.
func RateLimitByIdentity(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		return passthrough
	}
	return httprate.Limit(requestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(identityKey),
		httprate.WithLimitHandler(tooManyRequests),
	)
}

func identityKey(r *http.Request) (string, error) {
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(id.ID, 10), nil
	}
	return httprate.KeyByRealIP(r)
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	transport.NewBaseHandler(nil).WriteJSON(w, http.StatusTooManyRequests, transport.ErrorResponse{
		Code:      http.StatusTooManyRequests,
		ErrorCode: string(internal.ErrCodeRateLimited),
		Message:   "too many requests",
	})
}

func passthrough(next http.Handler) http.Handler { return next }
