package rest

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal/transport"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

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

// Pinger is the part of a dependency a readiness probe needs.
type Pinger interface {
	PingContext(ctx context.Context) error
}

var _ Pinger = (*sql.DB)(nil)

type HealthHandler struct {
	*transport.BaseHandler
	checks  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler checks the named dependencies on every readiness probe.
func NewHealthHandler(checks map[string]Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: transport.NewBaseHandler(logger),
		checks:      checks,
		timeout:     2 * time.Second,
	}
}

// Ping is the liveness probe.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Health pings every dependency and answers 503 if one is down.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{
		Status:     HealthHealthy,
		CheckedAt:  time.Now(),
		Components: make(map[string]CheckEntry, len(h.checks)),
	}
	for name, check := range h.checks {
		entry := probe(ctx, check)
		if entry.Status == HealthUnhealthy {
			resp.Status = HealthUnhealthy
			h.Logger.WarnContext(ctx, "health check failed", "component", name, "error", entry.Message)
		}
		resp.Components[name] = entry
	}

	status := http.StatusOK
	if resp.Status == HealthUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.WriteJSON(w, status, resp)
}

func probe(ctx context.Context, check Pinger) CheckEntry {
	start := time.Now()
	err := check.PingContext(ctx)
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

// PingerFunc adapts a plain function, such as a redis ping, to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) PingContext(ctx context.Context) error { return f(ctx) }
