package config

import "time"

// Config is the root configuration structure for t3dport.
type Config struct {
	// Import contains the default import request: mode, source directory
	// and destination root.
	Import ImportConfig `yaml:"import"`

	// Store selects and configures the asset store backend.
	Store StoreConfig `yaml:"store"`

	// Source configures where T3D documents are read from.
	Source SourceConfig `yaml:"source"`

	// Watch configures the file watcher used by "t3dport watch".
	Watch WatchConfig `yaml:"watch"`

	// Schedule configures periodic re-imports for "t3dport schedule".
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ImportConfig contains the default import request.
type ImportConfig struct {
	// Mode selects the import mode.
	// Options: "scene", "mesh", "material", "material-instance" (and aliases)
	// Default: "scene"
	Mode string `yaml:"mode"`

	// SourceDir is the directory holding the exported T3D documents.
	SourceDir string `yaml:"source_dir"`

	// Destination is the package root imported objects are placed under.
	// Example: "Imported/Level01"
	Destination string `yaml:"destination"`

	// LevelFile is the scene document name inside SourceDir.
	// Default: "PersistentLevel.T3D"
	LevelFile string `yaml:"level_file"`

	// Extension is the document extension scanned in batch modes. Matching
	// is case-insensitive.
	// Default: ".T3D"
	Extension string `yaml:"extension"`

	// ReportFormat controls the end-of-run report output.
	// Options: "text", "json"
	// Default: "text"
	ReportFormat string `yaml:"report_format"`
}

// StoreConfig selects the asset store backend.
type StoreConfig struct {
	// Backend is the store implementation.
	// Options: "memory", "sqlite"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLite contains SQLite-specific configuration.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Permissive disables the per-kind property schema, accepting every
	// property name.
	// Default: false
	Permissive bool `yaml:"permissive"`
}

// SQLiteConfig contains SQLite store configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/assets.db"
	Path string `yaml:"path"`

	// Driver selects the database/sql driver.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the time to wait for a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// SourceConfig configures the document source.
type SourceConfig struct {
	// Type is the source kind.
	// Options: "os", "git"
	// Default: "os"
	Type string `yaml:"type"`

	// Git contains configuration for a Git-hosted export.
	Git GitSourceConfig `yaml:"git"`
}

// GitSourceConfig configures a Git repository holding T3D exports.
type GitSourceConfig struct {
	// Repository is the remote URL.
	Repository string `yaml:"repository"`

	// Branch is the branch to check out.
	// Default: "main"
	Branch string `yaml:"branch"`

	// LocalPath is the clone directory.
	// Default: "<tmp>/t3dport-source"
	LocalPath string `yaml:"local_path"`

	// Depth is the clone depth; 0 clones the full history.
	// Default: 1
	Depth int `yaml:"depth"`

	// CleanOnStart removes LocalPath before cloning.
	// Default: false
	CleanOnStart bool `yaml:"clean_on_start"`

	// Timeout bounds clone and pull operations.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Auth contains repository credentials.
	Auth GitAuthConfig `yaml:"auth"`
}

// GitAuthConfig contains Git authentication settings.
type GitAuthConfig struct {
	// Type is the authentication method.
	// Options: "none", "token", "ssh"
	// Default: "none"
	Type string `yaml:"type"`

	// Token is the access token for "token" auth.
	Token string `yaml:"token"`

	// SSHKeyPath is the private key for "ssh" auth.
	SSHKeyPath string `yaml:"ssh_key_path"`

	// SSHKeyPassphrase unlocks an encrypted SSH key.
	SSHKeyPassphrase string `yaml:"ssh_key_passphrase"`
}

// WatchConfig configures the re-import watcher.
type WatchConfig struct {
	// DebounceInterval is the quiet period after a change before the
	// import runs.
	// Default: 500ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// SkipHidden ignores dot files and directories.
	// Default: true
	SkipHidden bool `yaml:"skip_hidden"`

	// MetricsAddress serves /metrics while watching. Empty disables it.
	// Example: "127.0.0.1:9102"
	MetricsAddress string `yaml:"metrics_address"`
}

// ScheduleConfig configures periodic re-imports.
type ScheduleConfig struct {
	// Cron is a standard five-field cron expression.
	// Default: "0 * * * *" (hourly)
	Cron string `yaml:"cron"`

	// RunOnStart triggers one import when the scheduler starts.
	// Default: false
	RunOnStart bool `yaml:"run_on_start"`

	// Timeout bounds one scheduled import. 0 disables the limit.
	// Default: 30m
	Timeout time.Duration `yaml:"timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "t3dport"
	Namespace string `yaml:"namespace"`

	// TextfilePath writes metrics in the node_exporter textfile format
	// after each run. Empty disables it.
	TextfilePath string `yaml:"textfile_path"`

	// DurationBuckets defines histogram buckets for run duration (seconds).
	// Default: [0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "t3dport"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for the OTLP connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
