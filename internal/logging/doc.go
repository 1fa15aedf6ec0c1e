// Package logging provides structured logging for ADB-aware tooling,
// built on go.uber.org/zap.
//
// # Overview
//
// The logging package provides a structured logging interface with support for:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Console and JSON output formats
//   - Request ID tracking, correlating one applet invocation's log lines
//   - Field-based contextual logging
//
// # Creating a Logger
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stderr",
//	})
//
// Or use defaults:
//
//	logger := logging.NewDefault() // Info level, console format, stderr
//
// For testing, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Log Levels
//
//	logger.Debug("detailed debugging info", "key", "value")
//	logger.Info("informational message", "key", "value")
//	logger.Warn("warning message", "key", "value")
//	logger.Error("error message", "key", "value")
//
// # Request ID Tracking
//
//	requestID := logging.GenerateRequestID()
//	runLogger := logger.WithRequestID(requestID)
//
//	runLogger.Info("fetching repository index") // Includes request_id field
//
// # Contextual Fields
//
//	repoLogger := logger.WithFields("repo", repoURL)
//	repoLogger.Info("index fetched")
package logging
