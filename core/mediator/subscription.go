package mediator

import (
	"reflect"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Subscription is returned by AddListener. Closing it removes the listener.
type Subscription struct {
	id       uuid.UUID
	mediator *Mediator
	ref      listenerRef
	types    []reflect.Type
	once     sync.Once
}

// ID returns the registration identifier.
func (s *Subscription) ID() string {
	return s.id.String()
}

// MessageTypes returns the message types the listener was registered for.
func (s *Subscription) MessageTypes() []reflect.Type {
	return slices.Clone(s.types)
}

// Close removes the listener from the mediator. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		if listener, ok := s.ref.value(); ok {
			s.mediator.RemoveListener(listener)
			return
		}
		// collected: drop whatever this registration left behind
		s.mediator.registry.removeRegistration(s.id)
	})
	return nil
}
