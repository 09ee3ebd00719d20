// Package logger provides the structured logging interface used across pagescraper.
//
// It wraps zerolog. Console output is one human-readable line per event,
// coloured unless NoColor is set; when a log file is configured, the same
// events are also appended to it as JSON lines.
//
// Basic Usage:
//
//	err := logger.Initialize(&config.LoggingConfig{Level: "info"})
//
//	logger.WithField("page", "p_1").Info("Created page directory")
//	logger.WithError(err).Error("Failed to create output root")
//
// Tests can capture every message with NewTestLogger, or discard
// everything with NewNopLogger.
package logger
