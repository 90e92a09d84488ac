package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// region resolution service.
type Metrics struct {
	ResolutionOutcomes *prometheus.CounterVec // labels: outcome={resolved,relaxed_to_province,no_content_nearby,out_of_territory,gateway_unavailable,location_error}
	ResolutionDuration prometheus.Histogram

	// Location acquisition metrics.
	AcquisitionAttempts *prometheus.CounterVec // labels: accuracy={high,low}, outcome={success,error}
	AcquisitionErrors   *prometheus.CounterVec // labels: kind={not_supported,permission_denied,position_unavailable,timeout,unknown}

	// Content gateway metrics.
	GatewayRequests   *prometheus.CounterVec   // labels: call={availability,trails}, outcome={success,error}
	GatewayDuration   *prometheus.HistogramVec // labels: call={availability,trails}
	AvailabilityCache *prometheus.CounterVec   // labels: result={hit,miss,invalidated}

	ActiveSessions     prometheus.Gauge
	BrowserTransitions *prometheus.CounterVec // labels: transition={select_province,select_city,back,apply,reset}, result={ok,noop}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ResolutionOutcomes,
		m.ResolutionDuration,
		m.AcquisitionAttempts,
		m.AcquisitionErrors,
		m.GatewayRequests,
		m.GatewayDuration,
		m.AvailabilityCache,
		m.ActiveSessions,
		m.BrowserTransitions,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ResolutionOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "region_service",
			Name:      "resolution_outcomes_total",
			Help:      "Location resolution results by outcome.",
		}, []string{"outcome"}),
		ResolutionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "region_service",
			Name:      "resolution_duration_seconds",
			Help:      "Duration of a full acquire-and-resolve chain.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		AcquisitionAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "region_service",
			Name:      "acquisition_attempts_total",
			Help:      "Location sensor attempts by accuracy tier and outcome.",
		}, []string{"accuracy", "outcome"}),
		AcquisitionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "region_service",
			Name:      "acquisition_errors_total",
			Help:      "Final acquisition failures by error kind.",
		}, []string{"kind"}),
		GatewayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "region_service",
			Name:      "gateway_requests_total",
			Help:      "Content gateway calls by method and outcome.",
		}, []string{"call", "outcome"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "region_service",
			Name:      "gateway_request_duration_seconds",
			Help:      "Content gateway request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"call"}),
		AvailabilityCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "region_service",
			Name:      "availability_cache_total",
			Help:      "Availability snapshot cache lookups and invalidations.",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "region_service",
			Name:      "active_sessions",
			Help:      "Browsing sessions currently open.",
		}),
		BrowserTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "region_service",
			Name:      "browser_transitions_total",
			Help:      "Region browser state transitions by type and result.",
		}, []string{"transition", "result"}),
	}
}
