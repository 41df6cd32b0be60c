package mediator_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mediator/core/mediator"
)

// flaky fails until it has been called failures times.
func flaky(failures int32, calls *atomic.Int32) func(context.Context, SomeMessage) error {
	return func(context.Context, SomeMessage) error {
		if calls.Add(1) <= failures {
			return errBoom
		}
		return nil
	}
}

func TestRetryMiddleware(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("recovers", func(t *testing.T) {
		t.Parallel()
		m := mediator.New(mediator.WithMiddleware(mediator.RetryMiddleware(3)))
		var calls atomic.Int32
		_, err := mediator.AddListenerFunc(m, flaky(2, &calls))
		require.NoError(t, err)

		require.NoError(t, mediator.SendNew[SomeMessage](ctx, m))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up", func(t *testing.T) {
		t.Parallel()
		m := mediator.New(mediator.WithMiddleware(mediator.RetryMiddleware(2)))
		var calls atomic.Int32
		_, err := mediator.AddListenerFunc(m, flaky(10, &calls))
		require.NoError(t, err)

		err = mediator.SendNew[SomeMessage](ctx, m)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "failed after 2 retries")
		assert.Equal(t, int32(3), calls.Load())
	})
}

func TestBackoffMiddleware(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := mediator.New(mediator.WithMiddleware(mediator.BackoffMiddleware(3, 5*time.Millisecond, 20*time.Millisecond)))
	var calls atomic.Int32
	_, err := mediator.AddListenerFunc(m, flaky(2, &calls))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, mediator.SendNew[SomeMessage](ctx, m))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	assert.Equal(t, int32(3), calls.Load())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	calls.Store(0)
	err = mediator.SendNew[SomeMessage](cancelled, m)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTimeoutMiddleware(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := mediator.New(mediator.WithMiddleware(mediator.TimeoutMiddleware(20 * time.Millisecond)))
	_, err := mediator.AddListenerFunc(m, func(ctx context.Context, msg SomeMessage) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.NoError(t, err)
	_, err = mediator.AddListenerFunc(m, func(context.Context, SomeMessage2) error {
		return nil
	})
	require.NoError(t, err)

	err = mediator.SendNew[SomeMessage](ctx, m)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NoError(t, mediator.SendNew[SomeMessage2](ctx, m))
}
