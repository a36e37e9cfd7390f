// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that a CLI run can keep stdout for the
// module's own output.
//
// Example Usage:
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	log := logger.Invocation(invID, "cvrf-review")
//	log.Info("Module finished", zap.Duration("duration", d))
package logging
