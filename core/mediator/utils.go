package mediator

import (
	"reflect"
	"sync"
)

// typeNameCache caches reflect.Type string forms used in logs and contexts.
var typeNameCache sync.Map

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if name, ok := typeNameCache.Load(t); ok {
		return name.(string)
	}
	name := t.String()
	typeNameCache.Store(t, name)
	return name
}

// newMessage builds the default instance of T. Pointer types get a freshly
// allocated zero value instead of nil.
func newMessage[T any]() T {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(T)
	}
	var zero T
	return zero
}
