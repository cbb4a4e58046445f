package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics
type Collector struct {
	// Operation metrics
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	FailoversTotal    *prometheus.CounterVec

	// Selector metrics
	CurrentEndpoint prometheus.Gauge
	FailingSeconds  prometheus.Gauge

	// Health check metrics
	HealthCheckTotal    *prometheus.CounterVec
	HealthCheckDuration *prometheus.HistogramVec
	EndpointUp          *prometheus.GaugeVec
	SnapshotRefreshes   prometheus.Counter

	// Admin server metrics
	AdminRequestsTotal *prometheus.CounterVec
}

// NewCollector creates all metrics and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiminio_operations_total",
				Help: "Total number of facade operations by outcome",
			},
			[]string{"operation", "result"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "multiminio_operation_duration_seconds",
				Help:    "Facade operation duration in seconds, failovers included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		FailoversTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiminio_failovers_total",
				Help: "Total number of switches to a fallback endpoint",
			},
			[]string{"from", "to"},
		),

		CurrentEndpoint: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "multiminio_current_endpoint",
				Help: "Priority index of the endpoint currently serving calls",
			},
		),

		FailingSeconds: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "multiminio_failing_seconds",
				Help: "Length of the current failure streak in seconds (0 when not failing)",
			},
		),

		HealthCheckTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiminio_health_checks_total",
				Help: "Total number of liveness probes",
			},
			[]string{"endpoint", "result"},
		),

		HealthCheckDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "multiminio_health_check_duration_seconds",
				Help:    "Liveness probe duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"endpoint"},
		),

		EndpointUp: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "multiminio_endpoint_up",
				Help: "Whether the last cached snapshot saw the endpoint healthy (1) or not (0)",
			},
			[]string{"endpoint"},
		),

		SnapshotRefreshes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "multiminio_snapshot_refreshes_total",
				Help: "Total number of probe rounds (cache misses)",
			},
		),

		AdminRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "multiminio_admin_requests_total",
				Help: "Total number of requests served by the admin endpoint",
			},
			[]string{"path", "status"},
		),
	}
}
