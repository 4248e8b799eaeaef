package api

import (
	"customs-analytics-service/internal/api/handlers"
	"customs-analytics-service/internal/platform/obs"
	"customs-analytics-service/internal/ports"
	"net/http"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.ShipmentRepository, pipeline handlers.AnalysisRunner, metrics *obs.Metrics) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Repo: repo}
	shipmentHandler := &handlers.ShipmentHandler{Repo: repo}
	analysisHandler := &handlers.AnalysisHandler{Pipeline: pipeline}
	routeHandler := &handlers.RouteHandler{Pipeline: pipeline}
	statsHandler := &handlers.StatsHandler{Pipeline: pipeline}

	mux.HandleFunc("/health", healthHandler.Check)
	mux.HandleFunc("/shipments", shipmentHandler.List)
	mux.HandleFunc("/analysis/run", analysisHandler.Run)
	mux.HandleFunc("/analysis/latest", analysisHandler.Latest)
	mux.HandleFunc("/routes/rankings", routeHandler.Rankings)
	mux.HandleFunc("/stats/delay", statsHandler.Delay)
	mux.HandleFunc("/stats/risk", statsHandler.Risk)
	mux.HandleFunc("/stats/correlations", statsHandler.Correlations)
	mux.Handle("/metrics", metrics.Handler())

	var handler http.Handler = mux
	handler = metricsMiddleware(metrics, handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}
