// Package async provides futures and schedulers for running work off the
// calling goroutine.
//
// # Core Types
//
// Future represents the outcome of an asynchronous computation that only
// returns an error. It provides methods to wait for completion (Await),
// check status without blocking (IsComplete), and handle timeouts
// (AwaitWithTimeout). A nil *Future is treated as already completed.
//
// Scheduler is a function that decides where a unit of work runs and
// returns a Future for it. Three schedulers are provided:
//
//   - Go: one goroutine per unit of work
//   - Inline: runs on the calling goroutine, returns a completed future
//   - Pool: bounded number of goroutines; when saturated the work runs on
//     the submitting goroutine, so nested waits never starve the pool
//
// # Usage
//
//	future := async.Exec(ctx, userID, func(ctx context.Context, id int) error {
//		return notify(ctx, id)
//	})
//
//	// Do other work...
//
//	if err := future.Await(); err != nil {
//		log.Println(err)
//	}
//
// Using a scheduler:
//
//	pool := async.NewPool(8)
//	var schedule async.Scheduler = pool.Schedule
//	err := schedule(ctx, func(ctx context.Context) error {
//		return process(ctx)
//	}).Await()
//
// # Coordination Utilities
//
// ExecAll waits for every future and returns the first error in argument
// order. ExecAny returns as soon as any future completes.
//
// # Error Handling
//
//   - ErrTimeout: returned when AwaitWithTimeout exceeds its duration
//   - ErrNoFutures: returned when ExecAny is called with no futures
//   - ErrPanicked: wraps a panic recovered from scheduled work
//
// # Context Support
//
// Exec checks for cancellation before starting and returns the context's
// error without running the function. Schedulers pass the context through
// to the work but never skip it: deciding what to do with a cancelled
// context is left to the work itself.
package async
