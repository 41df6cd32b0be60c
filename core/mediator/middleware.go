package mediator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mediator/core/logger"
)

// InvokeFunc delivers one message to one listener.
// For non-blocking listeners it returns once the listener's future completes.
type InvokeFunc func(ctx context.Context, msg any) error

// Middleware wraps every listener invocation, whatever its calling convention.
// ListenerName, MessageType and MessageID are available from the context.
type Middleware func(next InvokeFunc) InvokeFunc

// chainMiddleware applies middleware so the first one is the outermost.
func chainMiddleware(fn InvokeFunc, middleware []Middleware) InvokeFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		fn = middleware[i](fn)
	}
	return fn
}

// LoggingMiddleware logs each invocation with its duration and outcome.
//
// Example:
//
//	m := mediator.New(
//	    mediator.WithMiddleware(mediator.LoggingMiddleware(log)),
//	)
func LoggingMiddleware(log *slog.Logger) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, msg any) error {
			start := time.Now()
			attrs := []any{
				logger.Listener(ListenerName(ctx)),
				slog.String("message_type", MessageType(ctx)),
				logger.MessageID(MessageID(ctx)),
			}

			log.DebugContext(ctx, "listener invoked", attrs...)

			err := next(ctx, msg)
			attrs = append(attrs, logger.Duration(time.Since(start)))

			if err != nil {
				log.ErrorContext(ctx, "listener failed", append(attrs, logger.Error(err))...)
			} else {
				log.DebugContext(ctx, "listener completed", attrs...)
			}

			return err
		}
	}
}
