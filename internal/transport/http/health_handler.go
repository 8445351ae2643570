package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler exposes liveness and readiness probes. Readiness carries the
// session status so operators can see at a glance whether a dataset is
// loaded and whether it degraded to the fallback set.
type HealthHandler struct {
	service   DatasetServiceInterface
	logger    *slog.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service DatasetServiceInterface, logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		service:   service,
		logger:    logger.With(slog.String("handler", "health")),
		version:   version,
		startTime: time.Now(),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.HealthCheck)
	r.Get("/live", h.LivenessCheck)
	r.Get("/ready", h.ReadinessCheck)

	return r
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":         "healthy",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"session":        h.service.Status(r.Context()),
	})
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"status": "alive"})
}

// ReadinessCheck handles GET /api/health/ready
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ready",
		"session": h.service.Status(r.Context()),
	})
}
