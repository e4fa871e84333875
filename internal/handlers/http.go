package handlers

import (
	"net/http"

	"github.com/christian-rost/stammdatenmanagement/internal/api"
)

const serviceName = "Stammdatenmanagement API"

// HTTPHandler serves the unauthenticated liveness and metrics endpoints
type HTTPHandler struct {
	databaseConfigured bool
	metrics            http.Handler
}

// NewHTTPHandler creates a new HTTP handler. metrics may be nil.
func NewHTTPHandler(databaseConfigured bool, metrics http.Handler) *HTTPHandler {
	return &HTTPHandler{
		databaseConfigured: databaseConfigured,
		metrics:            metrics,
	}
}

// SetupRoutes configures all HTTP routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
}

// handleRoot handles GET /
func (h *HTTPHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// handleHealth handles GET /api/health. It reports whether a review database
// is configured, not whether it is reachable.
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	api.RespondJSON(w, http.StatusOK, api.HealthResponse{
		Status:   "healthy",
		Database: h.databaseConfigured,
	})
}
