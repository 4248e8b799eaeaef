package domain

// Aggregated delay and risk profile for one route across all of its
// shipments, plus the normalized score used for ranking. Summaries are
// serialized as-is into snapshots and report artifacts.
type RouteSummary struct {
	RouteCode     string `json:"route_code"`
	ShipmentCount int    `json:"shipment_count"`

	AvgDelayDays float64 `json:"avg_delay_days"`
	RiskRate     float64 `json:"risk_rate"`

	NormDelay float64 `json:"norm_delay"`
	NormRisk  float64 `json:"norm_risk"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}
