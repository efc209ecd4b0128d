package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"forge-hq/t3dport/pkg/config"
)

// RunMetrics tracks import runs and what they produced.
//
// Metrics:
//   - t3dport_runs_total: runs by mode and status
//   - t3dport_run_duration_seconds: run duration histogram by mode
//   - t3dport_documents_total: documents by mode and status
//   - t3dport_constructed_objects_total: committed objects by kind
//   - t3dport_diagnostics_total: diagnostics by error type
type RunMetrics struct {
	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	documentsTotal   *prometheus.CounterVec
	constructedTotal *prometheus.CounterVec
	diagnosticsTotal *prometheus.CounterVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_total",
				Help:      "Total number of import runs",
			},
			[]string{"mode", "status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of import runs in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"mode"},
		),

		documentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "documents_total",
				Help:      "Total number of T3D documents read",
			},
			[]string{"mode", "status"},
		),

		constructedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "constructed_objects_total",
				Help:      "Total number of objects committed to the asset store",
			},
			[]string{"kind"},
		),

		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "diagnostics_total",
				Help:      "Total number of import diagnostics",
			},
			[]string{"type"},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.documentsTotal,
		rm.constructedTotal,
		rm.diagnosticsTotal,
	)

	return rm
}

// RecordRun records a finished run.
func (rm *RunMetrics) RecordRun(mode, status string, duration time.Duration) {
	rm.runsTotal.WithLabelValues(mode, status).Inc()
	rm.runDuration.WithLabelValues(mode).Observe(duration.Seconds())
}
