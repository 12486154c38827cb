package httpapi

import (
	"log/slog"
	"net/http"
	"time"
)

const serviceName = "fraudcheck"

// HealthHandler provides HTTP health check endpoints.
type HealthHandler struct {
	logger        *slog.Logger
	startTime     time.Time
	alertsEnabled bool
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(logger *slog.Logger, alertsEnabled bool) *HealthHandler {
	return &HealthHandler{
		logger:        logger,
		startTime:     time.Now(),
		alertsEnabled: alertsEnabled,
	}
}

// HealthResponse is the JSON response for health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// ReadinessResponse is the JSON response for readiness checks.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Checks  map[string]string `json:"checks"`
}

// RegisterRoutes registers health endpoints on the provided ServeMux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// Healthz handles liveness probe requests.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: serviceName,
		Uptime:  time.Since(h.startTime).String(),
	})
}

// Readyz handles readiness probe requests. The classifier has no dependencies, so the service is
// ready as soon as it serves.
func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	alerts := "disabled"
	if h.alertsEnabled {
		alerts = "enabled"
	}

	writeJSON(w, h.logger, http.StatusOK, ReadinessResponse{
		Status:  "ready",
		Service: serviceName,
		Checks: map[string]string{
			"classifier": "ok",
			"alerts":     alerts,
		},
	})
}
