package handlers

import (
	"customs-analytics-service/internal/api/dto"
	"customs-analytics-service/internal/services"
	"errors"
	"log"
	"net/http"
)

type RouteHandler struct {
	Pipeline AnalysisRunner
}

// Rankings serves the ranked routes of the latest snapshot. The top
// query parameter caps how many are returned.
func (h *RouteHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	top, err := queryInt(r, "top", 0)
	if err != nil || top < 0 {
		writeError(w, r, http.StatusBadRequest, "top must be a positive integer")
		return
	}

	snap, err := h.Pipeline.Latest(r.Context())
	if errors.Is(err, services.ErrNoSnapshot) {
		writeError(w, r, http.StatusNotFound, "no analysis snapshot available, run an analysis first")
		return
	}
	if err != nil {
		log.Printf("latest snapshot failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	routes := snap.RouteRankings
	if top > 0 && top < len(routes) {
		routes = routes[:top]
	}

	writeJSON(w, r, http.StatusOK, dto.RouteRankingsResponse{
		RunID:  snap.RunID,
		Routes: routes,
	})
}
