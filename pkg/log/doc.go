// Package log provides the logging abstraction used by outbound handlers
// and clients.
//
// Handlers depend only on the [Logger] interface. A zerolog-backed adapter
// and a no-op logger are provided:
//
//	logger := log.NewZerologAdapter(log.ConsoleOutput, "info")
//	logger.Info("exchange completed", log.String("uri", u), log.Int("status", 200))
//
// Use the no-op logger in tests or when the caller does its own logging:
//
//	logger := log.NewNoopLogger()
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
//
// See version.go for version constants that can be used programmatically.
package log
