package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"forge-hq/t3dport/pkg/config"
)

// ResolveMetrics tracks reference resolution.
//
// Metrics:
//   - t3dport_resolve_iterations: fixpoint iterations per pass
//   - t3dport_resolved_references_total: references resolved by pass
//   - t3dport_unresolved_references: references left unresolved by the latest run
type ResolveMetrics struct {
	iterations *prometheus.HistogramVec
	resolved   *prometheus.CounterVec
	unresolved *prometheus.GaugeVec
}

// NewResolveMetrics creates and registers resolve metrics.
func NewResolveMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolveMetrics {
	rm := &ResolveMetrics{
		iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "resolve_iterations",
				Help:      "Fixpoint iterations run by a resolve pass",
				Buckets:   []float64{1, 2, 3, 5, 10, 25, 100},
			},
			[]string{"pass"},
		),

		resolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "resolved_references_total",
				Help:      "Total number of references resolved",
			},
			[]string{"pass"},
		),

		unresolved: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "unresolved_references",
				Help:      "References left unresolved by the latest run",
			},
			[]string{"mode"},
		),
	}

	registry.MustRegister(rm.iterations, rm.resolved, rm.unresolved)
	return rm
}

// RecordPass records one resolve pass.
func (rm *ResolveMetrics) RecordPass(pass string, iterations, resolved int) {
	rm.iterations.WithLabelValues(pass).Observe(float64(iterations))
	if resolved > 0 {
		rm.resolved.WithLabelValues(pass).Add(float64(resolved))
	}
}
