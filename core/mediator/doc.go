// Package mediator provides an in-process publish/subscribe mediator.
// Publishers send typed messages without knowing who consumes them;
// listeners declare the message types they handle without knowing who
// produces them.
//
// # Listeners
//
// A listener is any pointer type implementing Listener. Capabilities lists
// what it handles, one Capability per message type and calling convention.
// Capabilities are built from method expressions, so they never capture the
// listener:
//
//	type Audit struct{ log *slog.Logger }
//
//	func (a *Audit) Capabilities() []mediator.Capability {
//		return []mediator.Capability{
//			mediator.On((*Audit).userCreated),
//			mediator.OnAsync((*Audit).orderPlaced),
//		}
//	}
//
//	func (a *Audit) userCreated(ctx context.Context, evt UserCreated) error { ... }
//
//	func (a *Audit) orderPlaced(ctx context.Context, evt OrderPlaced) *async.Future {
//		return async.Exec(ctx, evt, a.archive)
//	}
//
// Single-message listeners can implement Handler[T] or AsyncHandler[T] and
// declare it with Handles[T]() or HandlesAsync[T]().
//
// A listener may declare both conventions for the same type. Blocking
// publishes use the blocking handler and non-blocking publishes use the
// non-blocking one.
//
// # Lifetime
//
// By default the registry holds listeners weakly: once the application
// drops its last reference, the listener is collected and its handles are
// pruned on the next publish of a type it was registered for. Nothing
// sweeps in the background. WithHoldReferences(true) makes strong the
// default; WithStrongReference and WithWeakReference override it per call.
// RemoveListener and Subscription.Close remove a listener immediately.
//
// Listeners of zero-size types share one address and are never collected.
//
// # Publishing
//
// Send blocks until every listener has run, awaiting non-blocking ones.
// SendAsync returns an *async.Future; listeners run as scheduler work and
// never on the caller's goroutine unless the scheduler is async.Inline.
// In both forms listeners run in registration order, one at a time, and a
// listener may publish again (blocking or not) from inside its handler.
//
//	err := mediator.Send(ctx, m, UserCreated{ID: id})
//	err = mediator.SendAsync(ctx, m, UserCreated{ID: id}).Await()
//	err = mediator.SendNew[CacheFlushed](ctx, m)
//
// Publish and PublishAsync route by the dynamic type of an any value.
//
// # Errors
//
// Every listener is attempted. The first failure is returned, wrapped in
// *InvocationError by default or as returned by the listener under
// PropagateUnwrapped; later failures are logged. Panics become *PanicError.
// A message with no listener is not an error: the OnZeroListeners callback
// runs instead.
//
// # Middleware
//
// Middleware wraps every listener invocation, blocking or not. The handler
// context carries MessageID, MessageType, PublishedAt, ListenerName and the
// re-entrancy Depth:
//
//	m := mediator.New(mediator.WithMiddleware(
//		mediator.LoggingMiddleware(log),
//		mediator.TimeoutMiddleware(30*time.Second),
//		mediator.RetryMiddleware(3),
//	))
//
// # Configuration
//
// Options configure a mediator at construction. Config and LoadConfig read
// the same settings from MEDIATOR_* environment variables.
package mediator
