package mediator

import (
	"context"
	"errors"
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mediator/core/logger"
	"github.com/dmitrymomot/mediator/pkg/async"
)

// send is the blocking publish path.
func (m *Mediator) send(ctx context.Context, t reflect.Type, msg any) error {
	ctx, targets, ok := m.prepare(ctx, t, msg)
	if !ok {
		return nil
	}
	return m.deliver(ctx, t, msg, targets, Blocking)
}

// sendAsync is the non-blocking publish path. Resolution and the
// zero-listener callback happen before it returns; delivery runs as
// scheduler work.
func (m *Mediator) sendAsync(ctx context.Context, t reflect.Type, msg any) *async.Future {
	ctx, targets, ok := m.prepare(ctx, t, msg)
	if !ok {
		return async.Resolved(nil)
	}
	return m.scheduler(ctx, func(ctx context.Context) error {
		return m.deliver(ctx, t, msg, targets, NonBlocking)
	})
}

// prepare resolves the live handles for t. It reports false when there is
// nothing to deliver, after notifying OnZeroListeners.
func (m *Mediator) prepare(ctx context.Context, t reflect.Type, msg any) (context.Context, []target, bool) {
	m.stats.published.Add(1)
	ctx = withMessageMeta(ctx, uuid.NewString(), typeName(t), time.Now())

	targets, pruned := m.registry.resolve(t)
	if pruned > 0 {
		m.stats.pruned.Add(int64(pruned))
		m.logger.DebugContext(ctx, "pruned collected listeners",
			logger.MessageType(t),
			logger.Count("pruned", pruned))
	}

	if len(targets) == 0 {
		m.stats.unhandled.Add(1)
		m.logger.DebugContext(ctx, "message has no listeners",
			logger.MessageType(t),
			logger.MessageID(MessageID(ctx)))
		m.onZeroListeners(ctx, msg)
		return ctx, nil, false
	}

	return ctx, targets, true
}

// deliver invokes every target in order. All targets are attempted; the
// first failure is returned and later ones are logged and dropped.
func (m *Mediator) deliver(ctx context.Context, t reflect.Type, msg any, targets []target, mode Convention) error {
	m.stats.active.Add(1)
	defer m.stats.active.Add(-1)

	var first error
	for _, tg := range targets {
		conv := tg.h.convention(mode)

		err := m.invoke(ctx, tg, conv, msg)
		if err == nil {
			m.stats.delivered.Add(1)
			continue
		}

		m.stats.failed.Add(1)
		var pe *PanicError
		if errors.As(err, &pe) {
			m.logger.ErrorContext(ctx, "listener panicked",
				logger.MessageType(t),
				logger.MessageID(MessageID(ctx)),
				logger.Listener(tg.h.listenerName),
				logger.Panic(pe.Value),
				logger.Stack(pe.Stack))
		}
		if first == nil {
			first = m.surface(tg.h, conv, err)
			continue
		}

		m.logger.WarnContext(ctx, "listener failure discarded, an earlier failure is reported",
			logger.MessageType(t),
			logger.MessageID(MessageID(ctx)),
			logger.Listener(tg.h.listenerName),
			logger.Convention(conv.String()),
			logger.Error(err))
	}

	return first
}

func (m *Mediator) invoke(ctx context.Context, tg target, conv Convention, msg any) error {
	ctx = withListenerName(ctx, tg.h.listenerName)

	if conv == Blocking {
		fn := chainMiddleware(func(ctx context.Context, msg any) error {
			return tg.h.invoke(ctx, tg.listener, msg)
		}, m.middleware)
		return safeInvoke(ctx, fn, msg)
	}

	fn := chainMiddleware(func(ctx context.Context, msg any) error {
		return tg.h.invokeAsync(ctx, tg.listener, msg).Await()
	}, m.middleware)

	// Non-blocking handlers are started and awaited as scheduler work, so
	// the waiting goroutine is never the one the handler needs.
	return m.scheduler(ctx, func(ctx context.Context) error {
		return safeInvoke(ctx, fn, msg)
	}).Await()
}

// surface applies the error policy to a handler failure.
func (m *Mediator) surface(h *handle, conv Convention, err error) error {
	if m.errorPolicy == PropagateUnwrapped {
		return err
	}
	return &InvocationError{
		MessageType: h.messageType,
		Listener:    h.listenerName,
		Convention:  conv,
		Err:         err,
	}
}

// safeInvoke converts a handler panic into a *PanicError.
func safeInvoke(ctx context.Context, fn InvokeFunc, msg any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx, msg)
}
