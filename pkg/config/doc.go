// Package config provides configuration management for t3dport.
//
// Configuration is loaded from a YAML file, completed with defaults and
// validated:
//
//	cfg, err := config.LoadConfig("t3dport.yaml")
//
// or, with environment variable overrides applied on top:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("t3dport.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention T3DPORT_SECTION_FIELD:
//
//   - T3DPORT_IMPORT_MODE overrides import.mode
//   - T3DPORT_STORE_SQLITE_PATH overrides store.sqlite.path
//   - T3DPORT_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// Configuration is passed explicitly to the components that need it; there
// is no package-level instance.
package config
