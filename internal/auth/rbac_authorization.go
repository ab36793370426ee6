package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/frahmantamala/event-management/pkg/logger"
)

// RBACAuthorization gates routes on a single capability from the request identity.
type RBACAuthorization struct {
	*transport.BaseHandler
	metrics *observability.Metrics
}

func NewRBACAuthorization(lg *slog.Logger, metrics *observability.Metrics) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(lg),
		metrics:     metrics,
	}
}

// Require responds 401 for anonymous callers and 403 when the capability is missing.
func (ra *RBACAuthorization) Require(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				ra.Logger.Warn("authorization check failed: no identity in context", "permission", capability)
				ra.HandleServiceError(w, ErrUnauthenticated)
				return
			}

			allowed := HasPermission(id, capability)
			ra.metrics.RecordAuthz(capability, allowed)
			if !allowed {
				logger.FromOr(r.Context(), ra.Logger).Warn("access denied: insufficient permissions",
					"required_permission", capability,
					"user_permissions", id.PermissionNames())
				ra.HandleServiceError(w, ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
