package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "T3DPORT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// The configuration is not modified by environment variables; use LoadConfigWithEnvOverrides
// for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention T3DPORT_SECTION_FIELD (e.g., T3DPORT_STORE_SQLITE_PATH).
// Environment variables always take precedence over file-based configuration.
//
// An empty path skips the file and starts from defaults.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Import overrides
	envString("IMPORT_MODE", &cfg.Import.Mode)
	envString("IMPORT_SOURCE_DIR", &cfg.Import.SourceDir)
	envString("IMPORT_DESTINATION", &cfg.Import.Destination)
	envString("IMPORT_LEVEL_FILE", &cfg.Import.LevelFile)
	envString("IMPORT_EXTENSION", &cfg.Import.Extension)
	envString("IMPORT_REPORT_FORMAT", &cfg.Import.ReportFormat)

	// Store overrides
	envString("STORE_BACKEND", &cfg.Store.Backend)
	envBool("STORE_PERMISSIVE", &cfg.Store.Permissive)
	envString("STORE_SQLITE_PATH", &cfg.Store.SQLite.Path)
	envString("STORE_SQLITE_DRIVER", &cfg.Store.SQLite.Driver)
	envBool("STORE_SQLITE_WAL_MODE", &cfg.Store.SQLite.WALMode)
	envDuration("STORE_SQLITE_BUSY_TIMEOUT", &cfg.Store.SQLite.BusyTimeout)

	// Source overrides
	envString("SOURCE_TYPE", &cfg.Source.Type)
	envString("SOURCE_GIT_REPOSITORY", &cfg.Source.Git.Repository)
	envString("SOURCE_GIT_BRANCH", &cfg.Source.Git.Branch)
	envString("SOURCE_GIT_LOCAL_PATH", &cfg.Source.Git.LocalPath)
	envInt("SOURCE_GIT_DEPTH", &cfg.Source.Git.Depth)
	envDuration("SOURCE_GIT_TIMEOUT", &cfg.Source.Git.Timeout)
	envString("SOURCE_GIT_AUTH_TYPE", &cfg.Source.Git.Auth.Type)
	envString("SOURCE_GIT_AUTH_TOKEN", &cfg.Source.Git.Auth.Token)
	envString("SOURCE_GIT_AUTH_SSH_KEY_PATH", &cfg.Source.Git.Auth.SSHKeyPath)

	// Watch and schedule overrides
	envDuration("WATCH_DEBOUNCE_INTERVAL", &cfg.Watch.DebounceInterval)
	envString("WATCH_METRICS_ADDRESS", &cfg.Watch.MetricsAddress)
	envString("SCHEDULE_CRON", &cfg.Schedule.Cron)
	envBool("SCHEDULE_RUN_ON_START", &cfg.Schedule.RunOnStart)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	envBool("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	envString("TELEMETRY_METRICS_TEXTFILE_PATH", &cfg.Telemetry.Metrics.TextfilePath)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	envString("TELEMETRY_TRACING_SERVICE_NAME", &cfg.Telemetry.Tracing.ServiceName)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = strings.TrimSpace(val)
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}
