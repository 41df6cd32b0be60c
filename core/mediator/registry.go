package mediator

import (
	"cmp"
	"reflect"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// registry maps message types to ordered buckets of handles.
// The map lock only guards bucket creation and lookup; each bucket
// serializes its own mutations, so different message types never contend.
type registry struct {
	mu      sync.RWMutex
	buckets map[reflect.Type]*bucket
	seq     atomic.Uint64
}

type bucket struct {
	mu      sync.Mutex
	handles []*handle
}

// target is a resolved live handle together with the listener it resolved to.
// Holding the listener keeps it reachable until the invocation is done.
type target struct {
	h        *handle
	listener any
}

func newRegistry() *registry {
	return &registry{buckets: make(map[reflect.Type]*bucket)}
}

func (r *registry) nextSeq() uint64 {
	return r.seq.Add(1)
}

func (r *registry) bucket(t reflect.Type, create bool) *bucket {
	r.mu.RLock()
	b := r.buckets[t]
	r.mu.RUnlock()

	if b != nil || !create {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if b = r.buckets[t]; b == nil {
		b = &bucket{}
		r.buckets[t] = b
	}
	return b
}

func (r *registry) allBuckets() []*bucket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bs := make([]*bucket, 0, len(r.buckets))
	for _, b := range r.buckets {
		bs = append(bs, b)
	}
	return bs
}

// add appends each handle to its type's bucket in registration order.
func (r *registry) add(handles []*handle) {
	for _, h := range handles {
		r.bucket(h.messageType, true).insert(h)
	}
}

// remove kills and drops every handle referring to listener.
func (r *registry) remove(listener any) int {
	return r.removeWhere(func(h *handle) bool {
		return h.ref.refersTo(listener)
	})
}

// removeRegistration kills and drops every handle created by one registration.
func (r *registry) removeRegistration(id uuid.UUID) int {
	return r.removeWhere(func(h *handle) bool {
		return h.registration == id
	})
}

func (r *registry) removeWhere(match func(*handle) bool) int {
	removed := 0
	for _, b := range r.allBuckets() {
		removed += b.deleteWhere(match)
	}
	return removed
}

// resolve returns the live handles for t in registration order and prunes
// dead ones from the bucket as a side effect. The returned slice is a
// snapshot: later mutations of the bucket are not visible through it.
func (r *registry) resolve(t reflect.Type) (live []target, pruned int) {
	b := r.bucket(t, false)
	if b == nil {
		return nil, 0
	}
	return b.resolve()
}

// count returns the number of handles currently stored for t, dead ones included.
func (r *registry) count(t reflect.Type) int {
	b := r.bucket(t, false)
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handles)
}

// snapshot returns every stored handle without pruning, ordered by registration.
func (r *registry) snapshot() []HandleInfo {
	var all []*handle
	for _, b := range r.allBuckets() {
		b.mu.Lock()
		all = append(all, b.handles...)
		b.mu.Unlock()
	}

	slices.SortStableFunc(all, func(a, b *handle) int {
		if c := cmp.Compare(a.seq, b.seq); c != 0 {
			return c
		}
		return strings.Compare(a.messageType.String(), b.messageType.String())
	})

	infos := make([]HandleInfo, 0, len(all))
	for _, h := range all {
		_, alive := h.listener()
		infos = append(infos, HandleInfo{
			Registration: h.registration.String(),
			MessageType:  h.messageType,
			Listener:     h.listenerName,
			Conventions:  h.conventions(),
			Strong:       h.ref.strong(),
			Alive:        alive,
		})
	}
	return infos
}

// insert keeps the bucket ordered by registration sequence.
func (b *bucket) insert(h *handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := len(b.handles)
	for i > 0 && b.handles[i-1].seq > h.seq {
		i--
	}
	b.handles = slices.Insert(b.handles, i, h)
}

func (b *bucket) deleteWhere(match func(*handle) bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	before := len(b.handles)
	b.handles = slices.DeleteFunc(b.handles, func(h *handle) bool {
		if match(h) {
			h.kill()
			return true
		}
		return false
	})
	return before - len(b.handles)
}

func (b *bucket) resolve() ([]target, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := make([]target, 0, len(b.handles))
	before := len(b.handles)
	b.handles = slices.DeleteFunc(b.handles, func(h *handle) bool {
		l, ok := h.listener()
		if !ok {
			return true
		}
		live = append(live, target{h: h, listener: l})
		return false
	})
	return live, before - len(b.handles)
}
