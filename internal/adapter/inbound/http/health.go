package http

import (
	"context"
	"net/http"
)

// Pinger is implemented by the store backing the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth reports store reachability. The core has no health-check
// operation of its own (out of scope per the Non-goals), but the Store
// exposes Ping so this transport-layer handler has something cheap to call.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.pinger == nil {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := h.pinger.Ping(r.Context()); err != nil {
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
