package handlers

import (
	"customs-analytics-service/internal/ports"
	"log"
	"net/http"
)

// HealthHandler reports liveness and whether the shipment store is
// reachable.
type HealthHandler struct {
	Repo ports.ShipmentRepository
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := h.Repo.CountShipments(r.Context())
	if err != nil {
		log.Printf("health check failed: %v", err)
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"detail": "shipment store unreachable",
		})
		return
	}

	res := map[string]any{
		"status":    "ok",
		"service":   "customs-analytics",
		"shipments": count,
	}
	writeJSON(w, r, http.StatusOK, res)
}
