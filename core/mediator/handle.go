package mediator

import (
	"context"
	"reflect"
	"sync/atomic"
	"weak"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mediator/pkg/async"
)

// ReferencePolicy selects how the registry holds a listener.
type ReferencePolicy uint8

const (
	// DefaultReference defers to the mediator-wide HoldReferences setting.
	DefaultReference ReferencePolicy = iota
	// WeakReference lets the listener be collected once the application drops it.
	WeakReference
	// StrongReference keeps the listener alive until it is removed.
	StrongReference
)

func (p ReferencePolicy) String() string {
	switch p {
	case WeakReference:
		return "weak"
	case StrongReference:
		return "strong"
	default:
		return "default"
	}
}

// listenerRef is the registry's reference to a listener instance.
type listenerRef interface {
	// value resolves the listener. ok is false once it has been collected.
	value() (listener any, ok bool)
	// refersTo reports whether listener is the referenced instance.
	refersTo(listener any) bool
	strong() bool
}

type strongRef[L any] struct {
	p *L
}

func (r strongRef[L]) value() (any, bool) { return r.p, true }

func (r strongRef[L]) refersTo(listener any) bool {
	p, ok := listener.(*L)
	return ok && p == r.p
}

func (strongRef[L]) strong() bool { return true }

type weakRef[L any] struct {
	p weak.Pointer[L]
}

func (r weakRef[L]) value() (any, bool) {
	p := r.p.Value()
	if p == nil {
		return nil, false
	}
	return p, true
}

func (r weakRef[L]) refersTo(listener any) bool {
	p, ok := listener.(*L)
	return ok && p != nil && weak.Make(p) == r.p
}

func (weakRef[L]) strong() bool { return false }

// newRef builds the reference for a registration. Zero-size listeners share
// one address and can never be collected, so they are always held strongly.
func newRef[L any](listener *L, strong bool) listenerRef {
	if strong || reflect.TypeFor[L]().Size() == 0 {
		return strongRef[L]{p: listener}
	}
	return weakRef[L]{p: weak.Make(listener)}
}

// handle is one listener's registration for one message type.
// A listener declaring both conventions for a type gets a single handle
// carrying both invokers.
type handle struct {
	registration uuid.UUID
	seq          uint64
	messageType  reflect.Type
	listenerName string
	ref          listenerRef

	invoke      func(ctx context.Context, listener, msg any) error
	invokeAsync func(ctx context.Context, listener, msg any) *async.Future

	dead atomic.Bool
}

// listener probes liveness. Once dead, a handle never becomes alive again.
func (h *handle) listener() (any, bool) {
	if h.dead.Load() {
		return nil, false
	}
	l, ok := h.ref.value()
	if !ok {
		h.dead.Store(true)
		return nil, false
	}
	return l, true
}

// kill marks the handle dead regardless of reachability.
func (h *handle) kill() {
	h.dead.Store(true)
}

// convention picks the invoker for a publish: the matching one when
// declared, otherwise the other.
func (h *handle) convention(publish Convention) Convention {
	switch {
	case publish == NonBlocking && h.invokeAsync != nil:
		return NonBlocking
	case h.invoke != nil:
		return Blocking
	default:
		return NonBlocking
	}
}

func (h *handle) conventions() []Convention {
	cs := make([]Convention, 0, 2)
	if h.invoke != nil {
		cs = append(cs, Blocking)
	}
	if h.invokeAsync != nil {
		cs = append(cs, NonBlocking)
	}
	return cs
}

// buildHandles groups capabilities by message type, preserving declaration order.
func buildHandles(id uuid.UUID, seq uint64, name string, ref listenerRef, caps []Capability) []*handle {
	handles := make([]*handle, 0, len(caps))
	byType := make(map[reflect.Type]*handle, len(caps))

	for _, c := range caps {
		h, ok := byType[c.messageType]
		if !ok {
			h = &handle{
				registration: id,
				seq:          seq,
				messageType:  c.messageType,
				listenerName: name,
				ref:          ref,
			}
			byType[c.messageType] = h
			handles = append(handles, h)
		}
		switch c.convention {
		case Blocking:
			h.invoke = c.invoke
		case NonBlocking:
			h.invokeAsync = c.invokeAsync
		}
	}

	return handles
}

// HandleInfo is a diagnostic view of one registry entry.
type HandleInfo struct {
	Registration string
	MessageType  reflect.Type
	Listener     string
	Conventions  []Convention
	Strong       bool
	// Alive is the liveness probe result at the time of the snapshot.
	Alive bool
}
