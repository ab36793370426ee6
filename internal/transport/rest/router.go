package rest

import (
	"log/slog"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/auth"
	"github.com/frahmantamala/event-management/internal/category"
	"github.com/frahmantamala/event-management/internal/event"
	"github.com/frahmantamala/event-management/internal/notification"
	"github.com/frahmantamala/event-management/internal/observability"
	"github.com/frahmantamala/event-management/internal/permission"
	"github.com/frahmantamala/event-management/internal/transport/middleware"
	"github.com/frahmantamala/event-management/internal/transport/swagger"
	"github.com/frahmantamala/event-management/internal/user"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Dependencies carries everything the router mounts. Nil handlers skip their routes.
type Dependencies struct {
	Config  *internal.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	DB      *sqlx.DB
	Redis   *redis.Client

	AuthHandler         *auth.Handler
	RBAC                *auth.RBACAuthorization
	EventHandler        *event.Handler
	NotificationHandler *notification.Handler
	UserHandler         *user.Handler
	CategoryHandler     *category.Handler
}

func RegisterAllRoutes(router *chi.Mux, deps Dependencies) {
	cfg := deps.Config
	healthHandler := NewHealthHandler(deps.DB, deps.Redis)

	rbac := deps.RBAC
	if rbac == nil {
		rbac = auth.NewRBACAuthorization(deps.Logger, deps.Metrics)
	}

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.CORS(cfg.Server.Origins()))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.RateLimitByIP(cfg.RateLimit.RequestsPerMinute))

	router.Get(swagger.SpecRoute, swagger.SpecHandler(cfg.Server.OpenAPIPath))
	router.Handle("/swagger/*", swagger.Handler())

	if cfg.Observability.Metrics.Enabled {
		router.Handle(cfg.Observability.Metrics.Path, deps.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/register", deps.AuthHandler.Register)
				sr.Post("/refresh", deps.AuthHandler.RefreshToken)
				sr.Post("/oidc/exchange", deps.AuthHandler.ExchangeIDToken)
				sr.Post("/logout", deps.AuthHandler.Logout)
			})
		}

		// Public categories route (no auth required)
		if deps.CategoryHandler != nil {
			r.Get("/categories", deps.CategoryHandler.GetCategories)
		}

		if deps.AuthHandler == nil {
			return
		}

		// Browsing events is public; a token, when sent, only enriches the logs.
		if deps.EventHandler != nil {
			r.Group(func(pub chi.Router) {
				pub.Use(deps.AuthHandler.OptionalAuthMiddleware)
				pub.Get("/events", deps.EventHandler.ListEvents)
				pub.Get("/events/{id}", deps.EventHandler.GetEvent)
			})
		}

		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			if deps.UserHandler != nil {
				pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
				pr.Get("/users", deps.UserHandler.LookupByEmail)
			}

			// Flat paths: a Route("/events") mount would shadow the public GETs above.
			if deps.EventHandler != nil {
				pr.With(rbac.Require(permission.EventCreate)).Post("/events", deps.EventHandler.CreateEvent)
				pr.Get("/events/mine", deps.EventHandler.ListMyEvents)

				// Ownership is decided by the service, which needs the stored row.
				pr.Put("/events/{id}", deps.EventHandler.UpdateEvent)
				pr.Delete("/events/{id}", deps.EventHandler.DeleteEvent)

				pr.With(
					rbac.Require(permission.EventRSVP),
					middleware.RateLimitByIdentity(cfg.RateLimit.RSVPPerMinute),
				).Post("/events/{id}/rsvp", deps.EventHandler.RSVP)
			}

			if deps.NotificationHandler != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", deps.NotificationHandler.ListNotifications)
					nr.Post("/read-all", deps.NotificationHandler.MarkAllRead)
					nr.Patch("/{id}/read", deps.NotificationHandler.MarkRead)
				})
			}
		})
	})
}
