// Package logging builds the zap loggers used across restmanager.
//
// Production loggers emit JSON; development loggers use a colored console
// encoder at debug level. Both write to stderr.
//
// Example Usage:
//
//	logger := logging.FromConfig(cfg.Logging)
//	defer logger.Sync()
package logging
