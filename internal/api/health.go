package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shanti-jangam/collaborative-code-env/internal/store"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store store.Store
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(st store.Store) *HealthHandler {
	return &HealthHandler{store: st}
}

// RegisterHealth registers the health routes.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Health)
}

// Health reports service and store health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"store":  "unreachable",
		})
		return
	}
	JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"store":  "ok",
	})
}
