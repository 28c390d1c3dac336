package prom

import "reflect"

// Local provides a value local to the system that persists between runs.
// It must be injected into a system as a pointer. Local declares no access.
type Local[T any] struct {
	noAccess
	Value T
}

func (l *Local[T]) init() SystemParamState {
	return l
}

func (l *Local[T]) getValue(systemContext) reflect.Value {
	return reflect.ValueOf(l)
}

func (l *Local[T]) cleanupValue() {
	// no cleanup needed
}

func (*Local[T]) valueType() reflect.Type {
	return reflect.TypeFor[*Local[T]]()
}
