// Package config provides 12-factor configuration for gatorbrowse.
//
// Configuration is loaded from environment variables with sensible defaults.
// Credentials are deliberately absent: callers pass them to the login
// extension explicitly.
//
// Configuration Sections:
//   - Browser: timeouts, HTTP redirect limit, redirect hop bound, user agent
//   - Retry: transient failure retry handler
//   - Throttle: request pacing and circuit breaker
//   - Site: login/logout/ISIS endpoints and landing/continuation patterns
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	b, err := uf.NewBrowser(cfg, logger)
package config
