package httpapi

import (
	"log/slog"
	"net/http"
)

// NewRouter registers every route and wraps them in request id and logging middleware.
// metrics may be nil to leave /metrics unexposed.
func NewRouter(check *FraudCheckHandler, health *HealthHandler, metrics http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/fraudcheck", check)
	health.RegisterRoutes(mux)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	return RequestID(LoggingMiddleware(logger)(mux))
}
