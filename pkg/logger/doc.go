// Package logger provides structured logging for the exporter.
//
// It wraps zerolog behind a small Logger interface:
//   - levels Debug, Info, Warn, Error
//   - fields via WithField, WithFields and WithError
//   - colored console output (format "text") or JSON lines (format "json")
//   - an optional log file that always receives JSON lines
//
// Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("run_id", logger.NewRunID())
//	log.InfoWithFields("Page scraped", map[string]interface{}{"page": 1, "rows": 100})
//
// Tests use NewNopLogger, or NewTestLogger to assert on captured messages.
package logger
