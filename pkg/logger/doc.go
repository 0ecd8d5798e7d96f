// Package logger builds log/slog loggers for the service and provides the
// attribute helpers used across the code base.
//
// New returns a JSON logger at info level writing to stdout unless options
// say otherwise. WithEnvironment picks text output and debug level for
// development and JSON at info level elsewhere.
//
// Context extractors add request-scoped attributes, such as the request id,
// to every record logged with a *Context method:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "mailcanvas"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "session created", logger.SessionID(id))
package logger
