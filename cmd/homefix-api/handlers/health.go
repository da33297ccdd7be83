package handlers

import (
	"net/http"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	classifier ImageClassifier
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(classifier ImageClassifier) *HealthHandler {
	return &HealthHandler{classifier: classifier}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "homefix-api"})
}

// Ready handles GET /ready. The server is ready when the inference backend
// has the model loaded.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.classifier.CheckReady(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "detail": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
