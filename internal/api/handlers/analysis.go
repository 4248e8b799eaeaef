package handlers

import (
	"context"
	"customs-analytics-service/internal/api/dto"
	"customs-analytics-service/internal/domain"
	"customs-analytics-service/internal/services"
	"errors"
	"log"
	"net/http"
)

// AnalysisRunner is what the analysis endpoints need from the pipeline.
type AnalysisRunner interface {
	Run(ctx context.Context, overrides *services.RunOverrides) (*domain.AnalysisSnapshot, error)
	Latest(ctx context.Context) (*domain.AnalysisSnapshot, error)
}

type AnalysisHandler struct {
	Pipeline AnalysisRunner
}

// Run executes a full analysis over the stored shipments. The request
// body may override individual analysis parameters; an empty body runs
// with the configured values.
func (h *AnalysisHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.RunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if req.DelayWeight != nil && *req.DelayWeight < 0 {
		writeError(w, r, http.StatusBadRequest, "delay_weight must be non-negative")
		return
	}
	if req.RiskWeight != nil && *req.RiskWeight < 0 {
		writeError(w, r, http.StatusBadRequest, "risk_weight must be non-negative")
		return
	}
	if req.DelayWeight != nil && req.RiskWeight != nil && *req.DelayWeight+*req.RiskWeight <= 0 {
		writeError(w, r, http.StatusBadRequest, "delay_weight and risk_weight must not both be zero")
		return
	}
	if req.LeakageThreshold != nil && (*req.LeakageThreshold <= 0 || *req.LeakageThreshold > 1) {
		writeError(w, r, http.StatusBadRequest, "leakage_threshold must be in (0, 1]")
		return
	}
	if req.HistogramBins != nil && *req.HistogramBins < 1 {
		writeError(w, r, http.StatusBadRequest, "histogram_bins must be at least 1")
		return
	}
	if req.TopRoutes != nil && *req.TopRoutes < 1 {
		writeError(w, r, http.StatusBadRequest, "top_routes must be at least 1")
		return
	}

	overrides := &services.RunOverrides{
		DelayWeight:      req.DelayWeight,
		RiskWeight:       req.RiskWeight,
		LeakageThreshold: req.LeakageThreshold,
		HistogramBins:    req.HistogramBins,
		TopRoutes:        req.TopRoutes,
	}

	snap, err := h.Pipeline.Run(r.Context(), overrides)
	if err != nil {
		log.Printf("analysis run failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, snap)
}

// Latest serves the most recent analysis snapshot without recomputing.
func (h *AnalysisHandler) Latest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
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

	writeJSON(w, r, http.StatusOK, snap)
}
