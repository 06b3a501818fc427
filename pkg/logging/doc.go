// Package logging configures log/slog for yafct binaries.
//
// Loggers write JSON to stderr and carry "module" and "version"
// attributes. At debug level each record also includes its source
// location.
//
//	logging.SetDefaultStructuredLogger("yafctd", version) // level from LOG_LEVEL
//	logging.SetDefaultStructuredLoggerWithLevel("yafct", version, "debug")
//
// ParseLogLevel accepts debug, info, warn (or warning) and error in any
// case and falls back to info. NewStructuredLogger returns a logger without
// installing it, and NewLogLogger bridges the default handler to a
// *log.Logger for http.Server.ErrorLog.
package logging
