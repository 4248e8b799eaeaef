package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments exposed on the metrics
// endpoint. A nil *Metrics is safe to use; every method is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal    *prometheus.CounterVec
	runDuration  prometheus.Histogram
	datasetRows  prometheus.Gauge
	leakFindings prometheus.Gauge
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics builds a Metrics set on its own registry, including the
// standard Go and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "customs_analytics",
			Name:      "runs_total",
			Help:      "Completed analysis runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "customs_analytics",
			Name:      "run_duration_seconds",
			Help:      "Wall time of analysis runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		datasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "customs_analytics",
			Name:      "dataset_rows",
			Help:      "Shipment rows covered by the latest run.",
		}),
		leakFindings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "customs_analytics",
			Name:      "leak_findings",
			Help:      "Leaking features flagged by the latest run.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "customs_analytics",
			Name:      "snapshot_cache_hits_total",
			Help:      "Snapshot reads served from the result cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "customs_analytics",
			Name:      "snapshot_cache_misses_total",
			Help:      "Snapshot reads that had to recompute.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "customs_analytics",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "customs_analytics",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}

	reg.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.datasetRows,
		m.leakFindings,
		m.cacheHits,
		m.cacheMisses,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Handler returns the HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records one completed analysis run.
func (m *Metrics) ObserveRun(status string, dur time.Duration, rows, leaks int) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(dur.Seconds())
	if status == "ok" {
		m.datasetRows.Set(float64(rows))
		m.leakFindings.Set(float64(leaks))
	}
}

// ObserveCache records a snapshot cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		return
	}
	m.cacheMisses.Inc()
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, path string, code int, dur time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(path).Observe(dur.Seconds())
}
