package handlers

import (
	"customs-analytics-service/internal/api/dto"
	"customs-analytics-service/internal/domain"
	"customs-analytics-service/internal/services"
	"errors"
	"log"
	"net/http"
)

// StatsHandler serves focused views into the latest snapshot, so
// dashboards do not have to pull the whole analysis.
type StatsHandler struct {
	Pipeline AnalysisRunner
}

func (h *StatsHandler) latest(w http.ResponseWriter, r *http.Request) *domain.AnalysisSnapshot {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return nil
	}

	snap, err := h.Pipeline.Latest(r.Context())
	if errors.Is(err, services.ErrNoSnapshot) {
		writeError(w, r, http.StatusNotFound, "no analysis snapshot available, run an analysis first")
		return nil
	}
	if err != nil {
		log.Printf("latest snapshot failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return nil
	}

	return snap
}

// Delay serves the arrival delay distribution of the latest snapshot.
func (h *StatsHandler) Delay(w http.ResponseWriter, r *http.Request) {
	snap := h.latest(w, r)
	if snap == nil {
		return
	}

	res := dto.DelayStatsResponse{
		Histogram: snap.DelayHistogram,
		Skewness:  snap.DelaySkewness,
	}
	for _, cs := range snap.ColumnStats {
		if cs.Column == snap.DelayHistogram.Column {
			res.Stats = cs
			break
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Risk serves the risk level class balance of the latest snapshot.
func (h *StatsHandler) Risk(w http.ResponseWriter, r *http.Request) {
	snap := h.latest(w, r)
	if snap == nil {
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RiskStatsResponse{Balance: snap.RiskBalance})
}

// Correlations serves the correlation matrix and leakage findings of
// the latest snapshot. The limit query parameter caps how many top
// correlations are returned.
func (h *StatsHandler) Correlations(w http.ResponseWriter, r *http.Request) {
	snap := h.latest(w, r)
	if snap == nil {
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil || limit < 0 {
		writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	top := snap.TopCorrelations
	if limit > 0 && limit < len(top) {
		top = top[:limit]
	}

	writeJSON(w, r, http.StatusOK, dto.CorrelationsResponse{
		Correlations:     snap.Correlations,
		TopCorrelations:  top,
		Leaks:            snap.Leaks,
		ExcludedFeatures: snap.ExcludedFeatures,
	})
}
