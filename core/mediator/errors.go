package mediator

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNilArgument is the base error for nil arguments.
	ErrNilArgument = errors.New("mediator: nil argument")

	// ErrInvalidArgument is the base error for arguments the mediator cannot accept.
	ErrInvalidArgument = errors.New("mediator: invalid argument")

	// ErrNilListener is returned when registering a nil listener.
	ErrNilListener = fmt.Errorf("%w: listener", ErrNilArgument)

	// ErrNilHandler is returned when registering a nil handler function.
	ErrNilHandler = fmt.Errorf("%w: handler function", ErrNilArgument)

	// ErrNilMessage is returned when publishing an untyped nil message.
	ErrNilMessage = fmt.Errorf("%w: message", ErrNilArgument)

	// ErrNoCapabilities is returned when a listener declares no recognized handler capability.
	ErrNoCapabilities = fmt.Errorf("%w: no recognized handler capability", ErrInvalidArgument)

	// ErrInvalidCapability is returned when a declared capability cannot be bound to the listener.
	ErrInvalidCapability = fmt.Errorf("%w: capability does not match listener", ErrInvalidArgument)

	// ErrDuplicateCapability is returned when a listener declares the same message type and convention twice.
	ErrDuplicateCapability = fmt.Errorf("%w: duplicate handler capability", ErrInvalidArgument)

	// ErrInvalidConfig is returned by LoadConfig for unusable settings.
	ErrInvalidConfig = errors.New("mediator: invalid configuration")
)

// InvocationError reports a listener failure under the PropagateWrapped policy.
// The original cause is available through errors.Is / errors.As.
type InvocationError struct {
	MessageType reflect.Type
	Listener    string
	Convention  Convention
	Err         error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("mediator: %s listener %s failed handling %s: %v",
		e.Convention, e.Listener, e.MessageType, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// PanicError is produced when a handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("mediator: handler panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
