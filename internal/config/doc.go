// Package config provides 12-factor configuration management for restmanager.
//
// Configuration is loaded from environment variables with sensible defaults.
// A YAML or TOML file may provide a base layer; environment variables
// always win over file values.
//
// Configuration Sections:
//   - REST: base URL, credentials, User-Agent and response mode
//   - Client: timeout, rate limit, compression and circuit breaker
//   - Logging: Log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Talking to %s in %s mode\n", cfg.REST.BaseURL, cfg.REST.ResponseMode)
//
// Environment Variables:
//   - REST_BASE_URL, REST_USERNAME, REST_PASSWORD, REST_USER_AGENT
//   - REST_RESPONSE_MODE, REST_TIMEOUT, REST_RATE_LIMIT_RPS, REST_COMPRESSION
//   - REST_BREAKER_THRESHOLD, REST_BREAKER_COOLDOWN
//   - LOG_LEVEL, LOG_DEV
package config
