package mediator_test

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/mediator"
	"github.com/dmitrymomot/mediator/pkg/async"
)

// Test message types

type SomeMessage struct {
	Text string
}

type SomeMessage2 struct {
	N int
}

type SomeMessage3 struct {
	Mediator *mediator.Mediator
}

type PointerMessage struct {
	Initialized bool
}

var errBoom = errors.New("boom")

// recorder collects what a listener received.
type recorder struct {
	mu  sync.Mutex
	got []any
}

func (r *recorder) record(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, v)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func (r *recorder) events() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]any, len(r.got))
	copy(out, r.got)
	return out
}

// someMessageHandler handles SomeMessage synchronously.
type someMessageHandler struct {
	recorder
}

func (h *someMessageHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.Handles[SomeMessage]()}
}

func (h *someMessageHandler) Handle(ctx context.Context, msg SomeMessage) error {
	h.record(msg)
	return nil
}

// multiHandler handles SomeMessage and SomeMessage2 synchronously.
type multiHandler struct {
	recorder
}

func (h *multiHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{
		mediator.On((*multiHandler).onSome),
		mediator.On((*multiHandler).onSome2),
	}
}

func (h *multiHandler) onSome(ctx context.Context, msg SomeMessage) error {
	h.record(msg)
	return nil
}

func (h *multiHandler) onSome2(ctx context.Context, msg SomeMessage2) error {
	h.record(msg)
	return nil
}

// asyncHandler handles SomeMessage with a future that completes later.
type asyncHandler struct {
	recorder
}

func (h *asyncHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.HandlesAsync[SomeMessage]()}
}

func (h *asyncHandler) HandleAsync(ctx context.Context, msg SomeMessage) *async.Future {
	return async.Exec(ctx, msg, func(ctx context.Context, m SomeMessage) error {
		time.Sleep(10 * time.Millisecond)
		h.record(m)
		return nil
	})
}

// multiAsyncHandler handles SomeMessage and SomeMessage2 asynchronously.
type multiAsyncHandler struct {
	recorder
}

func (h *multiAsyncHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{
		mediator.OnAsync((*multiAsyncHandler).onSome),
		mediator.OnAsync((*multiAsyncHandler).onSome2),
	}
}

func (h *multiAsyncHandler) onSome(ctx context.Context, msg SomeMessage) *async.Future {
	return async.Exec(ctx, msg, func(ctx context.Context, m SomeMessage) error {
		h.record(m)
		return nil
	})
}

func (h *multiAsyncHandler) onSome2(ctx context.Context, msg SomeMessage2) *async.Future {
	return async.Exec(ctx, msg, func(ctx context.Context, m SomeMessage2) error {
		h.record(m)
		return nil
	})
}

// dualHandler declares both conventions for SomeMessage.
type dualHandler struct {
	recorder
}

func (h *dualHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{
		mediator.Handles[SomeMessage](),
		mediator.HandlesAsync[SomeMessage](),
	}
}

func (h *dualHandler) Handle(ctx context.Context, msg SomeMessage) error {
	h.record(mediator.Blocking)
	return nil
}

func (h *dualHandler) HandleAsync(ctx context.Context, msg SomeMessage) *async.Future {
	h.record(mediator.NonBlocking)
	return async.Resolved(nil)
}

// failingHandler returns err for SomeMessage.
type failingHandler struct {
	recorder
	err error
}

func (h *failingHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.Handles[SomeMessage]()}
}

func (h *failingHandler) Handle(ctx context.Context, msg SomeMessage) error {
	h.record(msg)
	return h.err
}

// failingAsyncHandler fails SomeMessage through its future.
type failingAsyncHandler struct {
	recorder
	err error
}

func (h *failingAsyncHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.HandlesAsync[SomeMessage]()}
}

func (h *failingAsyncHandler) HandleAsync(ctx context.Context, msg SomeMessage) *async.Future {
	return async.Exec(ctx, msg, func(ctx context.Context, m SomeMessage) error {
		h.record(m)
		return h.err
	})
}

// panicHandler panics on SomeMessage.
type panicHandler struct {
	recorder
}

func (h *panicHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.Handles[SomeMessage]()}
}

func (h *panicHandler) Handle(ctx context.Context, msg SomeMessage) error {
	panic("listener exploded")
}

// countingHandler reports SomeMessage deliveries to a counter it does not own.
type countingHandler struct {
	hits *atomic.Int32
}

func (h *countingHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.Handles[SomeMessage]()}
}

func (h *countingHandler) Handle(ctx context.Context, msg SomeMessage) error {
	h.hits.Add(1)
	return nil
}

// pointerHandler handles *PointerMessage.
type pointerHandler struct {
	recorder
}

func (h *pointerHandler) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.Handles[*PointerMessage]()}
}

func (h *pointerHandler) Handle(ctx context.Context, msg *PointerMessage) error {
	h.record(msg)
	return nil
}

// Invalid listeners

type noCapabilities struct {
	Name string
}

type emptyCapabilities struct {
	Name string
}

func (e *emptyCapabilities) Capabilities() []mediator.Capability { return nil }

type wrongReceiver struct {
	Name string
}

func (w *wrongReceiver) Capabilities() []mediator.Capability {
	return []mediator.Capability{mediator.On((*someMessageHandler).Handle)}
}

type duplicateCapabilities struct {
	Name string
}

func (d *duplicateCapabilities) Capabilities() []mediator.Capability {
	return []mediator.Capability{
		mediator.On((*duplicateCapabilities).first),
		mediator.On((*duplicateCapabilities).second),
	}
}

func (d *duplicateCapabilities) first(ctx context.Context, msg SomeMessage) error  { return nil }
func (d *duplicateCapabilities) second(ctx context.Context, msg SomeMessage) error { return nil }

type zeroCapability struct {
	Name string
}

func (z *zeroCapability) Capabilities() []mediator.Capability {
	return []mediator.Capability{{}}
}

// Helpers

// addTransient registers a listener that nothing outside the mediator references.
//
//go:noinline
func addTransient(t *testing.T, m *mediator.Mediator, hits *atomic.Int32, opts ...mediator.RegisterOption) {
	t.Helper()
	_, err := mediator.AddListener(m, &countingHandler{hits: hits}, opts...)
	require.NoError(t, err)
}

func aliveHandles(m *mediator.Mediator) int {
	n := 0
	for _, info := range m.Listeners() {
		if info.Alive {
			n++
		}
	}
	return n
}

// waitAlive runs the collector until exactly want handles are alive.
func waitAlive(t *testing.T, m *mediator.Mediator, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		runtime.GC()
		return aliveHandles(m) == want
	}, 2*time.Second, 10*time.Millisecond)
}

// within fails the test if fn does not return in time.
func within(t *testing.T, d time.Duration, fn func() error) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-time.After(d):
		t.Fatalf("did not complete within %s, likely deadlocked", d)
		return nil
	}
}
