// Package metrics defines the Prometheus collectors exposed by the pscan
// web server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for pscan.
type Metrics struct {
	ScansTotal        prometheus.Counter
	ScanDuration      prometheus.Histogram
	RecordsCurrent    prometheus.Gauge
	QueriesTotal      *prometheus.CounterVec
	HTTPRequestsTotal *prometheus.CounterVec
}

// New creates the pscan collectors and registers them with the given
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pscan_scans_total",
			Help: "Total number of filesystem scans performed.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pscan_scan_duration_seconds",
			Help:    "Filesystem scan duration in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pscan_records",
			Help: "Number of records in the current index snapshot.",
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pscan_queries_total",
			Help: "Index queries by operation and outcome (ok, no_match, ambiguous, error).",
		}, []string{"op", "outcome"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pscan_http_requests_total",
			Help: "HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.ScanDuration,
		m.RecordsCurrent,
		m.QueriesTotal,
		m.HTTPRequestsTotal,
	)
	return m
}
