package async

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Scheduler decides where a unit of work runs and returns a future that
// completes with the work's error.
//
// A scheduler must never run work on a resource the caller may already be
// blocking on. All implementations in this package satisfy that.
type Scheduler func(ctx context.Context, work func(context.Context) error) *Future

// Go runs each unit of work on its own goroutine.
func Go(ctx context.Context, work func(context.Context) error) *Future {
	f := newFuture()
	go func() {
		f.complete(run(ctx, work))
	}()
	return f
}

// Inline runs work on the calling goroutine and returns an already completed future.
func Inline(ctx context.Context, work func(context.Context) error) *Future {
	return Resolved(run(ctx, work))
}

// Pool bounds the number of goroutines running scheduled work.
// When every slot is taken, the work runs on the submitting goroutine instead
// of queueing, so nested waits on the pool can never exhaust it.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool creates a pool with the given number of slots.
// A non-positive size uses runtime.GOMAXPROCS(0).
func NewPool(size int) *Pool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(size)),
		size: size,
	}
}

// Size returns the number of worker slots.
func (p *Pool) Size() int {
	return p.size
}

// Schedule runs work on a pool goroutine, or on the caller when the pool is saturated.
// It satisfies the Scheduler signature as a method value.
func (p *Pool) Schedule(ctx context.Context, work func(context.Context) error) *Future {
	if !p.sem.TryAcquire(1) {
		return Inline(ctx, work)
	}

	f := newFuture()
	go func() {
		defer p.sem.Release(1)
		f.complete(run(ctx, work))
	}()
	return f
}

// run executes work and converts a panic into an error.
func run(ctx context.Context, work func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanicked, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	return work(ctx)
}
