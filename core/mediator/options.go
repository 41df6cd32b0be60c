package mediator

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mediator/pkg/async"
)

// Option configures a Mediator.
type Option func(*Mediator)

// WithHoldReferences sets the default reference policy. When true, listeners
// are held strongly unless registered with WithWeakReference.
func WithHoldReferences(hold bool) Option {
	return func(m *Mediator) {
		m.holdReferences = hold
	}
}

// WithOnZeroListeners sets a callback invoked synchronously when a published
// message has no live listener.
//
// Example:
//
//	m := mediator.New(
//	    mediator.WithOnZeroListeners(func(ctx context.Context, msg any) {
//	        log.Warn("unhandled message", "type", mediator.MessageType(ctx))
//	    }),
//	)
func WithOnZeroListeners(fn func(ctx context.Context, msg any)) Option {
	return func(m *Mediator) {
		if fn != nil {
			m.onZeroListeners = fn
		}
	}
}

// WithScheduler sets where non-blocking work runs. Default is async.Go.
//
// Example:
//
//	pool := async.NewPool(16)
//	m := mediator.New(mediator.WithScheduler(pool.Schedule))
func WithScheduler(s async.Scheduler) Option {
	return func(m *Mediator) {
		if s != nil {
			m.scheduler = s
		}
	}
}

// WithErrorPolicy sets how listener failures are reported.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(m *Mediator) {
		m.errorPolicy = p
	}
}

// WithLogger configures structured logging.
// Default discards all records.
func WithLogger(log *slog.Logger) Option {
	return func(m *Mediator) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithMiddleware appends middleware applied to every listener invocation.
// The first middleware is the outermost.
func WithMiddleware(middleware ...Middleware) Option {
	return func(m *Mediator) {
		m.middleware = append(m.middleware, middleware...)
	}
}

// RegisterOption configures a single AddListener call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	policy ReferencePolicy
}

// WithReferencePolicy sets the reference policy for one registration.
func WithReferencePolicy(p ReferencePolicy) RegisterOption {
	return func(o *registerOptions) {
		o.policy = p
	}
}

// WithStrongReference keeps the listener alive until it is removed.
func WithStrongReference() RegisterOption {
	return WithReferencePolicy(StrongReference)
}

// WithWeakReference lets the listener be collected once the application drops it.
func WithWeakReference() RegisterOption {
	return WithReferencePolicy(WeakReference)
}
