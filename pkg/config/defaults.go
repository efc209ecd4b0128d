package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Import defaults
	DefaultImportMode         = "scene"
	DefaultImportLevelFile    = "PersistentLevel.T3D"
	DefaultImportExtension    = ".T3D"
	DefaultImportReportFormat = "text"

	// Store defaults
	DefaultStoreBackend      = "sqlite"
	DefaultSQLitePath        = "data/assets.db"
	DefaultSQLiteDriver      = "sqlite"
	DefaultSQLiteWALMode     = true
	DefaultSQLiteBusyTimeout = 5 * time.Second

	// Source defaults
	DefaultSourceType   = "os"
	DefaultGitBranch    = "main"
	DefaultGitDepth     = 1
	DefaultGitTimeout   = 60 * time.Second
	DefaultGitAuthType  = "none"
	DefaultGitCloneName = "t3dport-source"

	// Watch defaults
	DefaultWatchDebounce   = 500 * time.Millisecond
	DefaultWatchSkipHidden = true

	// Schedule defaults
	DefaultScheduleCron    = "0 * * * *"
	DefaultScheduleTimeout = 30 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "text"
	DefaultMetricsEnabled      = true
	DefaultMetricsPath         = "/metrics"
	DefaultMetricsNamespace    = "t3dport"
	DefaultTracingSampler      = "always"
	DefaultTracingSamplingRate = 1.0
	DefaultTracingServiceName  = "t3dport"
	DefaultOTLPTimeout         = 10 * time.Second
)

// DefaultDurationBuckets are the run duration histogram buckets in seconds.
var DefaultDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// NewDefault returns a configuration with every default applied.
func NewDefault() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Import defaults
	if cfg.Import.Mode == "" {
		cfg.Import.Mode = DefaultImportMode
	}
	if cfg.Import.LevelFile == "" {
		cfg.Import.LevelFile = DefaultImportLevelFile
	}
	if cfg.Import.Extension == "" {
		cfg.Import.Extension = DefaultImportExtension
	}
	if cfg.Import.ReportFormat == "" {
		cfg.Import.ReportFormat = DefaultImportReportFormat
	}

	// Store defaults
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.SQLite.Path == "" {
		cfg.Store.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Store.SQLite.Driver == "" {
		cfg.Store.SQLite.Driver = DefaultSQLiteDriver
	}
	if !cfg.Store.SQLite.WALMode {
		cfg.Store.SQLite.WALMode = DefaultSQLiteWALMode
	}
	if cfg.Store.SQLite.BusyTimeout == 0 {
		cfg.Store.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Source defaults
	if cfg.Source.Type == "" {
		cfg.Source.Type = DefaultSourceType
	}
	if cfg.Source.Git.Branch == "" {
		cfg.Source.Git.Branch = DefaultGitBranch
	}
	if cfg.Source.Git.LocalPath == "" {
		cfg.Source.Git.LocalPath = filepath.Join(os.TempDir(), DefaultGitCloneName)
	}
	if cfg.Source.Git.Depth == 0 {
		cfg.Source.Git.Depth = DefaultGitDepth
	}
	if cfg.Source.Git.Timeout == 0 {
		cfg.Source.Git.Timeout = DefaultGitTimeout
	}
	if cfg.Source.Git.Auth.Type == "" {
		cfg.Source.Git.Auth.Type = DefaultGitAuthType
	}

	// Watch defaults
	if cfg.Watch.DebounceInterval == 0 {
		cfg.Watch.DebounceInterval = DefaultWatchDebounce
	}
	if !cfg.Watch.SkipHidden {
		cfg.Watch.SkipHidden = DefaultWatchSkipHidden
	}

	// Schedule defaults
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = DefaultScheduleCron
	}
	if cfg.Schedule.Timeout == 0 {
		cfg.Schedule.Timeout = DefaultScheduleTimeout
	}

	applyTelemetryDefaults(cfg)
}

func applyTelemetryDefaults(cfg *Config) {
	t := &cfg.Telemetry

	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if !t.Metrics.Enabled {
		t.Metrics.Enabled = DefaultMetricsEnabled
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultMetricsPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}
}
