// Package logging builds the zap loggers used across the browser.
//
// Components receive a *zap.Logger and derive a named child from it:
//
//	log := logging.NewDefault()
//	b, _ := browser.New(browser.WithLogger(log))   // logs as "browser"
//	// redirect plugins log as "browser.redirect", site login as "browser.uf.login"
//
// Two modes are available:
//   - Production: JSON output on stderr
//   - Development: colored console output with callers and stack traces
//
// Credentials are never passed to a logger. Page bodies are logged at debug
// level only, truncated with Body.
package logging
