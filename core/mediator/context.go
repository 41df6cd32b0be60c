package mediator

import (
	"context"
	"time"
)

type messageIDCtx struct{}

// MessageID returns the identifier assigned to the message being dispatched.
// Returns empty string if not present.
func MessageID(ctx context.Context) string {
	if id, ok := ctx.Value(messageIDCtx{}).(string); ok {
		return id
	}
	return ""
}

type messageTypeCtx struct{}

// MessageType returns the name of the message type being dispatched.
// Returns empty string if not present.
func MessageType(ctx context.Context) string {
	if name, ok := ctx.Value(messageTypeCtx{}).(string); ok {
		return name
	}
	return ""
}

type publishedAtCtx struct{}

// PublishedAt returns the time the message was published.
// Returns zero time if not present.
func PublishedAt(ctx context.Context) time.Time {
	if t, ok := ctx.Value(publishedAtCtx{}).(time.Time); ok {
		return t
	}
	return time.Time{}
}

type depthCtx struct{}

// Depth returns how many publishes are nested in ctx: 1 inside a listener of
// a top-level publish, 2 inside a listener of a publish made from a listener,
// and so on. Returns 0 outside a dispatch.
func Depth(ctx context.Context) int {
	if d, ok := ctx.Value(depthCtx{}).(int); ok {
		return d
	}
	return 0
}

type listenerNameCtx struct{}

// ListenerName returns the name of the listener currently being invoked.
// Returns empty string outside an invocation.
func ListenerName(ctx context.Context) string {
	if name, ok := ctx.Value(listenerNameCtx{}).(string); ok {
		return name
	}
	return ""
}

func withMessageMeta(ctx context.Context, id, typeName string, at time.Time) context.Context {
	ctx = context.WithValue(ctx, messageIDCtx{}, id)
	ctx = context.WithValue(ctx, messageTypeCtx{}, typeName)
	ctx = context.WithValue(ctx, depthCtx{}, Depth(ctx)+1)
	return context.WithValue(ctx, publishedAtCtx{}, at)
}

func withListenerName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, listenerNameCtx{}, name)
}
