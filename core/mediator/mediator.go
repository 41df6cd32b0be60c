package mediator

import (
	"context"
	"log/slog"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mediator/core/logger"
	"github.com/dmitrymomot/mediator/pkg/async"
)

// ErrorPolicy controls how a listener failure reaches the publisher.
type ErrorPolicy uint8

const (
	// PropagateWrapped reports failures as *InvocationError wrapping the cause.
	PropagateWrapped ErrorPolicy = iota
	// PropagateUnwrapped reports the cause returned by the listener as is.
	PropagateUnwrapped
)

// Mediator routes published messages to the listeners registered for their type.
// Publishers and listeners never reference each other.
//
// Example:
//
//	m := mediator.New(mediator.WithLogger(log))
//	sub, err := mediator.AddListener(m, mailer)
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
//
//	err = mediator.Send(ctx, m, UserCreated{Email: "user@example.com"})
type Mediator struct {
	registry *registry

	holdReferences  bool
	onZeroListeners func(context.Context, any)
	scheduler       async.Scheduler
	errorPolicy     ErrorPolicy
	middleware      []Middleware
	logger          *slog.Logger

	stats counters
}

// New creates a mediator with the given options.
// Defaults: weak references, goroutine scheduler, wrapped errors, no logging.
func New(opts ...Option) *Mediator {
	m := &Mediator{
		registry:        newRegistry(),
		onZeroListeners: func(context.Context, any) {},
		scheduler:       async.Go,
		errorPolicy:     PropagateWrapped,
		logger:          logger.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// AddListener registers listener under every message type it declares.
// The registry holds it weakly unless the mediator holds references by
// default or a RegisterOption forces a policy.
//
// Fails with ErrNilListener for a nil listener and with an
// ErrInvalidArgument error when it declares no usable capability; in both
// cases nothing is registered.
func AddListener[L any](m *Mediator, listener *L, opts ...RegisterOption) (*Subscription, error) {
	if listener == nil {
		return nil, ErrNilListener
	}

	caps, err := DescribeCapabilities(listener)
	if err != nil {
		return nil, err
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	strong := m.holdReferences
	switch o.policy {
	case StrongReference:
		strong = true
	case WeakReference:
		strong = false
	}

	ref := newRef(listener, strong)
	return m.register(ref, typeName(reflect.TypeOf(listener)), caps), nil
}

func (m *Mediator) register(ref listenerRef, name string, caps []Capability) *Subscription {
	id := uuid.New()
	handles := buildHandles(id, m.registry.nextSeq(), name, ref, caps)
	m.registry.add(handles)

	types := make([]reflect.Type, 0, len(handles))
	for _, h := range handles {
		types = append(types, h.messageType)
	}

	m.logger.Debug("listener added",
		logger.Listener(name),
		logger.Registration(id.String()),
		logger.Count("message_types", len(types)),
		slog.Bool("strong", ref.strong()))

	return &Subscription{id: id, mediator: m, ref: ref, types: types}
}

// RemoveListener removes every registration of listener. Removing a listener
// that is not registered is a no-op.
func (m *Mediator) RemoveListener(listener any) {
	if isNil(listener) {
		return
	}
	if n := m.registry.remove(listener); n > 0 {
		m.logger.Debug("listener removed",
			logger.Listener(typeName(reflect.TypeOf(listener))),
			logger.Count("handles", n))
	}
}

// Publish delivers msg, keyed by its dynamic type, and blocks until every
// listener has run. It returns the first listener failure, per the error policy.
func (m *Mediator) Publish(ctx context.Context, msg any) error {
	if msg == nil {
		return ErrNilMessage
	}
	return m.send(ctx, reflect.TypeOf(msg), msg)
}

// PublishAsync is the non-blocking form of Publish.
func (m *Mediator) PublishAsync(ctx context.Context, msg any) *async.Future {
	if msg == nil {
		return async.Resolved(ErrNilMessage)
	}
	return m.sendAsync(ctx, reflect.TypeOf(msg), msg)
}

// Send delivers msg to the listeners of T and blocks until all have run.
// Non-blocking listeners are awaited.
func Send[T any](ctx context.Context, m *Mediator, msg T) error {
	return m.send(ctx, reflect.TypeFor[T](), msg)
}

// SendNew sends a default instance of T. Pointer types receive a new zero value.
func SendNew[T any](ctx context.Context, m *Mediator) error {
	return Send(ctx, m, newMessage[T]())
}

// SendAsync delivers msg to the listeners of T without blocking the caller.
// The returned future completes once every listener has run.
func SendAsync[T any](ctx context.Context, m *Mediator, msg T) *async.Future {
	return m.sendAsync(ctx, reflect.TypeFor[T](), msg)
}

// SendNewAsync is the non-blocking form of SendNew.
func SendNewAsync[T any](ctx context.Context, m *Mediator) *async.Future {
	return SendAsync(ctx, m, newMessage[T]())
}

// Count returns the number of handles stored for T, including collected
// listeners that have not been pruned yet.
func Count[T any](m *Mediator) int {
	return m.registry.count(reflect.TypeFor[T]())
}

// CountOf is Count for a runtime type.
func (m *Mediator) CountOf(t reflect.Type) int {
	return m.registry.count(t)
}

// Listeners returns every stored handle without pruning.
func (m *Mediator) Listeners() []HandleInfo {
	return m.registry.snapshot()
}

// LiveListeners returns the live listeners of T in dispatch order,
// pruning collected ones.
func LiveListeners[T any](m *Mediator) []any {
	targets, pruned := m.registry.resolve(reflect.TypeFor[T]())
	m.stats.pruned.Add(int64(pruned))

	out := make([]any, 0, len(targets))
	for _, tg := range targets {
		out = append(out, tg.listener)
	}
	return out
}

// Stats provides observability counters.
type Stats struct {
	Published        int64
	Delivered        int64
	Failed           int64
	Unhandled        int64
	Pruned           int64
	ActiveDispatches int32
}

type counters struct {
	published atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
	unhandled atomic.Int64
	pruned    atomic.Int64
	active    atomic.Int32
}

// Stats returns current counters.
func (m *Mediator) Stats() Stats {
	return Stats{
		Published:        m.stats.published.Load(),
		Delivered:        m.stats.delivered.Load(),
		Failed:           m.stats.failed.Load(),
		Unhandled:        m.stats.unhandled.Load(),
		Pruned:           m.stats.pruned.Load(),
		ActiveDispatches: m.stats.active.Load(),
	}
}
