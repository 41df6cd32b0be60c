package mediator

import (
	"context"
	"fmt"
	"time"
)

// RetryMiddleware retries a failing invocation up to maxRetries times.
// Returns the last error if all attempts fail.
//
// Example:
//
//	m := mediator.New(mediator.WithMiddleware(mediator.RetryMiddleware(3)))
func RetryMiddleware(maxRetries int) Middleware {
	return BackoffMiddleware(maxRetries, 0, 0)
}

// BackoffMiddleware retries a failing invocation with exponentially growing
// delays, starting at initialDelay and capped at maxDelay.
//
// Example:
//
//	m := mediator.New(
//	    mediator.WithMiddleware(mediator.BackoffMiddleware(5, 100*time.Millisecond, 10*time.Second)),
//	)
func BackoffMiddleware(maxRetries int, initialDelay, maxDelay time.Duration) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, msg any) error {
			var lastErr error
			delay := initialDelay

			for attempt := 0; attempt <= maxRetries; attempt++ {
				if attempt > 0 {
					if delay > 0 {
						select {
						case <-ctx.Done():
							return ctx.Err()
						case <-time.After(delay):
						}
						delay = min(delay*2, maxDelay)
					} else if ctx.Err() != nil {
						return ctx.Err()
					}
				}

				lastErr = next(ctx, msg)
				if lastErr == nil {
					return nil
				}
			}

			return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
		}
	}
}

// TimeoutMiddleware bounds a single invocation. The listener's context is
// cancelled after timeout and the invocation reports context.DeadlineExceeded.
// A listener that ignores its context keeps running in the background.
//
// Example:
//
//	m := mediator.New(mediator.WithMiddleware(mediator.TimeoutMiddleware(30*time.Second)))
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, msg any) error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- safeInvoke(ctx, next, msg)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return fmt.Errorf("listener timeout after %s: %w", timeout, ctx.Err())
			}
		}
	}
}
