package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"forge-hq/t3dport/pkg/config"
)

// Collector owns the Prometheus metrics of the importer.
//
// A nil *Collector is valid and records nothing, so components can take one
// unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics     *RunMetrics
	resolveMetrics *ResolveMetrics
}

// NewCollector creates a collector registering into registry. If registry is
// nil a fresh one is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "t3dport"}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:         cfg,
		registry:       registry,
		runMetrics:     NewRunMetrics(cfg, registry),
		resolveMetrics: NewResolveMetrics(cfg, registry),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordRun records a finished import run.
//
// Parameters:
//   - mode: import mode ("scene", "mesh", "material", "material-instance")
//   - status: "success", "error" or "cancelled"
//   - duration: wall time of the run
func (c *Collector) RecordRun(mode, status string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.runMetrics.RecordRun(mode, status, duration)
}

// RecordDocument records one document read by a run.
// Status is "parsed", "failed" or "reclassified".
func (c *Collector) RecordDocument(mode, status string) {
	if !c.enabled() {
		return
	}
	c.runMetrics.documentsTotal.WithLabelValues(mode, status).Inc()
}

// RecordConstructed adds n objects of kind committed to the store.
func (c *Collector) RecordConstructed(kind string, n int) {
	if !c.enabled() || n <= 0 {
		return
	}
	c.runMetrics.constructedTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordDiagnostic counts a diagnostic by error type.
func (c *Collector) RecordDiagnostic(errType string) {
	if !c.enabled() {
		return
	}
	c.runMetrics.diagnosticsTotal.WithLabelValues(errType).Inc()
}

// RecordPass records a resolve pass: how many fixpoint iterations it ran
// and how many references it resolved.
func (c *Collector) RecordPass(pass string, iterations, resolved int) {
	if !c.enabled() {
		return
	}
	c.resolveMetrics.RecordPass(pass, iterations, resolved)
}

// SetUnresolved sets the unresolved reference count left by the latest run
// of mode.
func (c *Collector) SetUnresolved(mode string, n int) {
	if !c.enabled() {
		return
	}
	c.resolveMetrics.unresolved.WithLabelValues(mode).Set(float64(n))
}

// Registry returns the Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
