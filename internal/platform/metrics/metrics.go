// Package metrics bundles the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics bundles Prometheus collectors for the service.
type Metrics struct {
	Registry           *prometheus.Registry
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	AppraisalsTotal    *prometheus.CounterVec
	AppraisalDuration  *prometheus.HistogramVec
	PricingFallbacks   prometheus.Counter
	SnapshotSize       *prometheus.GaugeVec
	SnapshotRefreshErr *prometheus.CounterVec
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_http_requests_total",
			Help: "Total HTTP requests by route and status code.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlens_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	appraisals := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_appraisals_total",
			Help: "Total appraisals by identification strategy and outcome.",
		},
		[]string{"strategy", "status"},
	)
	appraisalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardlens_appraisal_duration_seconds",
			Help:    "Time spent identifying and pricing one image.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"strategy"},
	)
	fallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cardlens_pricing_fallbacks_total",
			Help: "Total price multipliers computed with the fallback formula.",
		},
	)
	snapshotSize := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cardlens_snapshot_entries",
			Help: "Number of entries in the current catalog or corpus snapshot.",
		},
		[]string{"snapshot"},
	)
	refreshErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardlens_snapshot_refresh_errors_total",
			Help: "Total failed snapshot refreshes.",
		},
		[]string{"snapshot"},
	)

	registry.MustRegister(
		httpRequests, httpDuration, appraisals, appraisalDuration, fallbacks, snapshotSize, refreshErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		Registry:           registry,
		HTTPRequestsTotal:  httpRequests,
		HTTPDuration:       httpDuration,
		AppraisalsTotal:    appraisals,
		AppraisalDuration:  appraisalDuration,
		PricingFallbacks:   fallbacks,
		SnapshotSize:       snapshotSize,
		SnapshotRefreshErr: refreshErrors,
	}
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveAppraisal records the outcome and latency of one appraisal.
func (m *Metrics) ObserveAppraisal(strategy, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.AppraisalsTotal.WithLabelValues(strategy, status).Inc()
	m.AppraisalDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// IncFallback increments the pricing fallback counter.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.PricingFallbacks.Inc()
}

// SetSnapshotSize records the size of a freshly swapped-in snapshot.
func (m *Metrics) SetSnapshotSize(snapshot string, n int) {
	if m == nil {
		return
	}
	m.SnapshotSize.WithLabelValues(snapshot).Set(float64(n))
}

// IncRefreshError increments the refresh error counter for a snapshot.
func (m *Metrics) IncRefreshError(snapshot string) {
	if m == nil {
		return
	}
	m.SnapshotRefreshErr.WithLabelValues(snapshot).Inc()
}
