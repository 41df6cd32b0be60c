package async

import "errors"

var (
	// ErrTimeout is returned by AwaitWithTimeout when the duration elapses first.
	ErrTimeout = errors.New("async: operation timed out")

	// ErrNoFutures is returned by ExecAny when called without futures.
	ErrNoFutures = errors.New("async: no futures provided")

	// ErrPanicked wraps a value recovered from scheduled work.
	ErrPanicked = errors.New("async: work panicked")
)
