package mediator

import (
	"context"

	"github.com/dmitrymomot/mediator/pkg/async"
)

// funcListener adapts a plain function to a single-capability listener.
type funcListener[T any] struct {
	fn func(context.Context, T) error
}

func (l *funcListener[T]) Capabilities() []Capability {
	return []Capability{On((*funcListener[T]).handle)}
}

func (l *funcListener[T]) handle(ctx context.Context, msg T) error {
	return l.fn(ctx, msg)
}

type asyncFuncListener[T any] struct {
	fn func(context.Context, T) *async.Future
}

func (l *asyncFuncListener[T]) Capabilities() []Capability {
	return []Capability{OnAsync((*asyncFuncListener[T]).handle)}
}

func (l *asyncFuncListener[T]) handle(ctx context.Context, msg T) *async.Future {
	return l.fn(ctx, msg)
}

// AddListenerFunc registers fn as a blocking listener for T.
// The wrapper is held strongly: close the subscription to remove it.
//
// Example:
//
//	sub, err := mediator.AddListenerFunc(m, func(ctx context.Context, evt UserCreated) error {
//	    return sendWelcomeEmail(ctx, evt.Email)
//	})
//	defer sub.Close()
func AddListenerFunc[T any](m *Mediator, fn func(context.Context, T) error) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return AddListener(m, &funcListener[T]{fn: fn}, WithStrongReference())
}

// AddListenerFuncAsync registers fn as a non-blocking listener for T.
// The wrapper is held strongly: close the subscription to remove it.
func AddListenerFuncAsync[T any](m *Mediator, fn func(context.Context, T) *async.Future) (*Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return AddListener(m, &asyncFuncListener[T]{fn: fn}, WithStrongReference())
}
