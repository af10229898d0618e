// Package metrics exposes recompute and HTTP counters to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edp1096/spkline/pkg/analysis"
)

// EngineMetrics implements analysis.Observer.
type EngineMetrics struct {
	RecomputeDuration prometheus.Histogram
	RecomputeTotal    prometheus.Counter
	NodesByStatus     *prometheus.GaugeVec
	FaultsTotal       prometheus.Counter
	TotalRMSWatts     prometheus.Gauge
	TotalCVWatts      prometheus.Gauge
	RequestsTotal     *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewEngineMetrics creates the metrics and registers them with registry.
func NewEngineMetrics(registry *prometheus.Registry) (*EngineMetrics, error) {
	m := &EngineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register engine metrics: %w", err)
	}
	return m, nil
}

func (m *EngineMetrics) initMetrics() {
	m.RecomputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "spkline_recompute_duration_seconds",
			Help:    "Time taken to recompute every wiring tree of a project",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~200ms
		},
	)
	m.RecomputeTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spkline_recomputes_total",
			Help: "Total number of completed recomputes",
		},
	)
	m.NodesByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spkline_nodes",
			Help: "Nodes of the most recent recompute partitioned by status.",
		},
		[]string{"status"},
	)
	m.FaultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "spkline_root_faults_total",
			Help: "Total number of root calculations that failed and were recovered",
		},
	)
	m.TotalRMSWatts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spkline_lowz_demand_watts",
			Help: "Low-Z RMS demand of the most recent recompute.",
		},
	)
	m.TotalCVWatts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "spkline_cv_tap_watts",
			Help: "Constant-voltage tap power of the most recent recompute.",
		},
	)
	m.RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spkline_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"route", "code"},
	)
}

func (m *EngineMetrics) ObserveRecompute(elapsed time.Duration, s analysis.Summary) {
	m.RecomputeDuration.Observe(elapsed.Seconds())
	m.RecomputeTotal.Inc()
	m.NodesByStatus.WithLabelValues("ok").Set(float64(s.OK))
	m.NodesByStatus.WithLabelValues("warning").Set(float64(s.Warnings))
	m.NodesByStatus.WithLabelValues("error").Set(float64(s.Errors))
	m.FaultsTotal.Add(float64(s.Faults))
	m.TotalRMSWatts.Set(s.TotalRMS)
	m.TotalCVWatts.Set(s.TotalCVWatts)
}

// ObserveRequest counts one API request.
func (m *EngineMetrics) ObserveRequest(route string, code int) {
	m.RequestsTotal.WithLabelValues(route, fmt.Sprint(code)).Inc()
}

func (m *EngineMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.RecomputeDuration.Desc()
	ch <- m.RecomputeTotal.Desc()
	m.NodesByStatus.Describe(ch)
	ch <- m.FaultsTotal.Desc()
	ch <- m.TotalRMSWatts.Desc()
	ch <- m.TotalCVWatts.Desc()
	m.RequestsTotal.Describe(ch)
}

func (m *EngineMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.RecomputeDuration
	ch <- m.RecomputeTotal
	m.NodesByStatus.Collect(ch)
	ch <- m.FaultsTotal
	ch <- m.TotalRMSWatts
	ch <- m.TotalCVWatts
	m.RequestsTotal.Collect(ch)
}

func (m *EngineMetrics) Registry() *prometheus.Registry {
	return m.registry
}
