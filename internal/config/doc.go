// Package config provides centralized configuration management for the
// churn mailing service. It handles loading configuration from multiple
// sources, validation, and provides a type-safe API for accessing
// configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern CHURNMAIL_* for namespacing:
//
//	CHURNMAIL_PORT=8080
//	CHURNMAIL_LEVEL=debug
//	CHURNMAIL_RECENCY_DAYS=60
//	CHURNMAIL_MAX_SIZE_MB=25
//	CHURNMAIL_DIR=data/artifacts
//
// # Validation
//
// All configuration is validated at load time to ensure:
//
//	- Values are within acceptable ranges
//	- The recency window and upload limits are positive
//	- Logging format/output fall back to safe values
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tests, config.Default() returns a configuration with sensible
// defaults that require no environment variables or files.
package config
