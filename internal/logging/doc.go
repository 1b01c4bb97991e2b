// Package logging provides structured logging for the Trådfri bridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the bridge. It provides both general logging
// functions and specialized functions for bridge-specific logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (task scheduling, publishes, payloads)
//   - Info: Normal operations (observations registered, discovery cycles)
//   - Warn: Non-fatal issues (task retries, ping misses, session resets)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Observation registered",
//	    zap.String("path", "15001/65537"),
//	    zap.String("gateway", "192.168.1.63:5684"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogTask("ping", "requeued")
//	logging.LogObserve("15001", "registered")
//	logging.LogPublish("tradfri-raw/15001/65537", 142)
//	logging.LogSessionReset("192.168.1.63:5684", "ping failures")
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is given, the TRADFRI_BRIDGE_LOG_LEVEL environment variable
// is consulted; if that is also unset, logging is silent.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
