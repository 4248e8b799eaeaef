package dto

import "customs-analytics-service/internal/domain"

// RunRequest carries per-run parameter overrides. Absent fields keep
// the configured values.
type RunRequest struct {
	DelayWeight      *float64 `json:"delay_weight"`
	RiskWeight       *float64 `json:"risk_weight"`
	LeakageThreshold *float64 `json:"leakage_threshold"`
	HistogramBins    *int     `json:"histogram_bins"`
	TopRoutes        *int     `json:"top_routes"`
}

// Snapshot types already carry their serialization tags, so the
// analysis endpoints serve them directly and only the focused stats
// views get response shapes of their own.

type DelayStatsResponse struct {
	Stats     domain.ColumnStats    `json:"stats"`
	Histogram domain.DelayHistogram `json:"histogram"`
	Skewness  float64               `json:"skewness"`
}

type RiskStatsResponse struct {
	Balance []domain.RiskShare `json:"balance"`
}

type CorrelationsResponse struct {
	Correlations     domain.CorrelationMatrix `json:"correlations"`
	TopCorrelations  []domain.Correlation     `json:"top_correlations"`
	Leaks            []domain.LeakFinding     `json:"leaks"`
	ExcludedFeatures []string                 `json:"excluded_features"`
}

type RouteRankingsResponse struct {
	RunID  string                `json:"run_id"`
	Routes []domain.RouteSummary `json:"routes"`
}
