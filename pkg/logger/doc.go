// Package logger builds log/slog loggers with context extraction and optional
// Sentry forwarding.
//
// Local output goes to stderr by default, as JSON or text:
//
//	level, _ := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
//	log := logger.New(logger.Options{Level: level, Format: logger.FormatText})
//
// # Context Extractors
//
// A [ContextExtractor] returns an attribute derived from the context of each
// log call. [NewLogHandlerDecorator] applies extractors to any slog.Handler:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok && id != ""
//	}
//	log := logger.New(opts, requestID)
//
// # Sentry Integration
//
// [NewWithSentry] sends warnings and errors to Sentry in addition to the local
// handler. Errors create issues. With an empty DSN, or when the SDK fails to
// initialize, it falls back to local logging only. Call [Flush] before exit.
//
// [NewNope] returns a logger that discards everything; use it as a default.
package logger
