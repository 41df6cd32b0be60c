package mediator

import (
	"context"
	"fmt"
	"reflect"

	"github.com/dmitrymomot/mediator/pkg/async"
)

// Convention is the calling convention of a handler.
type Convention uint8

const (
	// Blocking handlers return when their work is done.
	Blocking Convention = iota + 1
	// NonBlocking handlers return a future that completes when their work is done.
	NonBlocking
)

func (c Convention) String() string {
	switch c {
	case Blocking:
		return "blocking"
	case NonBlocking:
		return "non-blocking"
	default:
		return fmt.Sprintf("Convention(%d)", uint8(c))
	}
}

// Listener is implemented by anything that wants to receive messages.
// Capabilities is called once per registration.
//
//	func (a *Audit) Capabilities() []mediator.Capability {
//		return []mediator.Capability{
//			mediator.On((*Audit).userCreated),
//			mediator.OnAsync((*Audit).orderPlaced),
//		}
//	}
type Listener interface {
	Capabilities() []Capability
}

// Handler is a single-message blocking listener. Declare it with Handles.
type Handler[T any] interface {
	Handle(ctx context.Context, msg T) error
}

// AsyncHandler is a single-message non-blocking listener. Declare it with HandlesAsync.
type AsyncHandler[T any] interface {
	HandleAsync(ctx context.Context, msg T) *async.Future
}

// Capability binds one message type and calling convention to a handler.
// Capabilities are built from method expressions and never hold the listener
// itself, so a weakly referenced listener stays collectable.
type Capability struct {
	messageType reflect.Type
	receiver    reflect.Type
	convention  Convention
	accepts     func(listener any) bool
	invoke      func(ctx context.Context, listener, msg any) error
	invokeAsync func(ctx context.Context, listener, msg any) *async.Future
}

// MessageType returns the message type the capability handles.
func (c Capability) MessageType() reflect.Type {
	return c.messageType
}

// Convention returns the calling convention of the capability.
func (c Capability) Convention() Convention {
	return c.convention
}

func (c Capability) String() string {
	return fmt.Sprintf("%s(%s) on %s", c.convention, c.messageType, c.receiver)
}

// On declares a blocking handler for messages of type T on receivers of type R.
//
//	mediator.On((*Mailer).userCreated)
func On[R, T any](fn func(R, context.Context, T) error) Capability {
	return Capability{
		messageType: reflect.TypeFor[T](),
		receiver:    reflect.TypeFor[R](),
		convention:  Blocking,
		accepts:     accepts[R],
		invoke: func(ctx context.Context, listener, msg any) error {
			return fn(listener.(R), ctx, castMessage[T](msg))
		},
	}
}

// OnAsync declares a non-blocking handler for messages of type T on receivers of type R.
func OnAsync[R, T any](fn func(R, context.Context, T) *async.Future) Capability {
	return Capability{
		messageType: reflect.TypeFor[T](),
		receiver:    reflect.TypeFor[R](),
		convention:  NonBlocking,
		accepts:     accepts[R],
		invokeAsync: func(ctx context.Context, listener, msg any) *async.Future {
			return fn(listener.(R), ctx, castMessage[T](msg))
		},
	}
}

// Handles declares that the listener implements Handler[T].
func Handles[T any]() Capability {
	return On(func(h Handler[T], ctx context.Context, msg T) error {
		return h.Handle(ctx, msg)
	})
}

// HandlesAsync declares that the listener implements AsyncHandler[T].
func HandlesAsync[T any]() Capability {
	return OnAsync(func(h AsyncHandler[T], ctx context.Context, msg T) *async.Future {
		return h.HandleAsync(ctx, msg)
	})
}

// DescribeCapabilities returns the validated capabilities a listener declares.
// It fails with ErrNilListener for nil and with an ErrInvalidArgument error
// when the listener declares nothing usable.
func DescribeCapabilities(listener any) ([]Capability, error) {
	if isNil(listener) {
		return nil, ErrNilListener
	}

	l, ok := listener.(Listener)
	if !ok {
		return nil, fmt.Errorf("%w: %T does not implement Listener", ErrNoCapabilities, listener)
	}

	declared := l.Capabilities()
	if len(declared) == 0 {
		return nil, fmt.Errorf("%w: %T declares none", ErrNoCapabilities, listener)
	}

	type key struct {
		t reflect.Type
		c Convention
	}
	seen := make(map[key]struct{}, len(declared))
	caps := make([]Capability, 0, len(declared))

	for _, c := range declared {
		if c.messageType == nil || c.accepts == nil {
			return nil, fmt.Errorf("%w: zero Capability declared by %T", ErrInvalidCapability, listener)
		}
		if !c.accepts(listener) {
			return nil, fmt.Errorf("%w: %T is not a %s", ErrInvalidCapability, listener, c.receiver)
		}
		k := key{c.messageType, c.convention}
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCapability, c)
		}
		seen[k] = struct{}{}
		caps = append(caps, c)
	}

	return caps, nil
}

func accepts[R any](listener any) bool {
	_, ok := listener.(R)
	return ok
}

// castMessage converts msg to T, yielding the zero value for an untyped nil.
func castMessage[T any](msg any) T {
	if v, ok := msg.(T); ok {
		return v
	}
	var zero T
	return zero
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
