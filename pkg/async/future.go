package async

import (
	"context"
	"sync"
	"time"
)

// Future represents the result of an asynchronous computation that only returns an error.
type Future struct {
	err  error
	once sync.Once
	done chan struct{}
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that is already complete with the given error.
func Resolved(err error) *Future {
	f := newFuture()
	f.complete(err)
	return f
}

// complete records the outcome. Only the first call has any effect.
func (f *Future) complete(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Await waits for the asynchronous function to complete and returns its error.
// A nil future is treated as already completed without error.
func (f *Future) Await() error {
	if f == nil {
		return nil
	}
	<-f.done
	return f.err
}

// AwaitWithTimeout waits for the asynchronous function to complete with a timeout.
// Returns the error if the function completes before the timeout.
// If the timeout occurs before completion, returns ErrTimeout.
func (f *Future) AwaitWithTimeout(timeout time.Duration) error {
	if f == nil {
		return nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.done:
		return f.err
	case <-timer.C:
		return ErrTimeout
	}
}

// Done returns a channel that is closed once the future completes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// IsComplete checks if the asynchronous function is complete without blocking.
func (f *Future) IsComplete() bool {
	if f == nil {
		return true
	}
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec executes a function asynchronously that only returns an error.
// The function accepts a context.Context and a parameter of any type T.
// A panic inside fn is converted into an error wrapping ErrPanicked.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *Future {
	f := newFuture()

	go func() {
		// Early exit prevents running work for a caller that already gave up
		select {
		case <-ctx.Done():
			f.complete(ctx.Err())
			return
		default:
		}

		f.complete(run(ctx, func(ctx context.Context) error {
			return fn(ctx, param)
		}))
	}()

	return f
}

// ExecAll waits for all futures to complete and returns the first error
// encountered in argument order.
func ExecAll(futures ...*Future) error {
	var first error
	for _, future := range futures {
		if err := future.Await(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ExecAny waits for any of the futures to complete and returns the index of the completed future
// and any error it might have returned.
func ExecAny(futures ...*Future) (int, error) {
	if len(futures) == 0 {
		return -1, ErrNoFutures
	}

	type result struct {
		index int
		err   error
	}

	// Buffered so that late finishers never block after the winner is taken
	done := make(chan result, len(futures))

	for i, future := range futures {
		go func(index int, f *Future) {
			done <- result{index, f.Await()}
		}(i, future)
	}

	res := <-done
	return res.index, res.err
}
