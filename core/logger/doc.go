// Package logger provides slog attribute helpers for the mediator.
//
// Helpers return an empty slog.Attr for zero inputs, which slog drops, so
// call sites never need nil checks:
//
//	log.ErrorContext(ctx, "listener failed",
//		logger.MessageType(reflect.TypeOf(msg)),
//		logger.Listener("*billing.Invoicer"),
//		logger.Error(err),
//	)
//
// Discard returns a logger that writes nowhere; components use it as their
// default so logging is opt-in.
package logger
