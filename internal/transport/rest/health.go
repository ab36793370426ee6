package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/event-management/internal"
	"github.com/frahmantamala/event-management/internal/transport"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

const healthCheckTimeout = 2 * time.Second

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	CheckedAt  time.Time    `json:"checked_at"`
	DurationMs int64        `json:"duration_ms"`
}

// HealthHandler probes postgres (required) and redis (optional). A redis
// outage only degrades the service since notification broadcast is best effort.
type HealthHandler struct {
	*transport.BaseHandler
	db    *sqlx.DB
	redis *redis.Client
}

func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		BaseHandler: transport.NewBaseHandler(nil),
		db:          db,
		redis:       redisClient,
	}
}

// pingHandler is the liveness probe.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler is the readiness probe.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := internal.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		Components: map[string]CheckEntry{},
	}

	pg := check(ctx, h.db.PingContext)
	resp.Components["postgres"] = pg
	if pg.Status != HealthHealthy {
		resp.Status = HealthUnhealthy
	}

	if h.redis != nil {
		rd := check(ctx, func(ctx context.Context) error { return h.redis.Ping(ctx).Err() })
		resp.Components["redis"] = rd
		if rd.Status != HealthHealthy && resp.Status == HealthHealthy {
			resp.Status = HealthDegraded
		}
	}
	resp.CheckedAt = time.Now()

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		h.Logger.Warn("readiness check failed", "components", resp.Components)
		statusCode = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, statusCode, resp)
}

func check(ctx context.Context, ping func(context.Context) error) CheckEntry {
	start := time.Now()
	err := ping(ctx)

	entry := CheckEntry{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
	}
	return entry
}
