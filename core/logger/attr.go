package logger

import (
	"io"
	"log/slog"
	"reflect"
	"time"
)

// Attribute helpers use the empty Attr pattern for nil safety.
// This allows calls like log.Info("msg", logger.Error(err)) without explicit nil checks.

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ============================================================================
// Error Handling
// ============================================================================

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Panic creates an attribute for a recovered panic value.
func Panic(v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any("panic", v)
}

// Stack creates an attribute for a captured stack trace.
// Returns empty Attr for an empty trace.
func Stack(stack []byte) slog.Attr {
	if len(stack) == 0 {
		return slog.Attr{}
	}
	return slog.String("stack", string(stack))
}

// ============================================================================
// Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// ============================================================================
// Messaging
// ============================================================================

// MessageType creates an attribute naming a message type.
func MessageType(t reflect.Type) slog.Attr {
	if t == nil {
		return slog.Attr{}
	}
	return slog.String("message_type", t.String())
}

// MessageID creates an attribute for a published message identifier.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

// Listener creates an attribute naming a listener.
func Listener(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("listener", name)
}

// Registration creates an attribute for a registration identifier.
func Registration(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("registration_id", id)
}

// Convention creates an attribute for a handler calling convention.
func Convention(c string) slog.Attr {
	return slog.String("convention", c)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
