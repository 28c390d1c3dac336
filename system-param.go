package prom

import (
	"reflect"

	"go.uber.org/zap"
)

// SystemParam is an interface to give a type special behaviour when it is used
// as a parameter to a system.
//
// While a system is being prepared, each parameter type is checked for the
// SystemParam interface. A new instance is allocated for every parameter and
// its init method is called. Only types implementing SystemParam can be
// used as system parameters.
//
// See Res, ResMut, EventReader, WriteWorld or Local for implementations.
type SystemParam interface {
	init() SystemParamState
}

// SystemParamState is the state produced by SystemParam.
type SystemParamState interface {
	// declareAccess records the access of the parameter in the tracker of
	// the current phase. It returns an *AccessConflictError if the access
	// is incompatible with an access declared before.
	declareAccess(tracker *AccessTracker) error

	// getValue returns the value that should be passed to the system.
	// It must be assignable to the parameter type of the system.
	getValue(sc systemContext) reflect.Value

	// cleanupValue will be called once the system has returned.
	// It releases any borrow taken by getValue.
	cleanupValue()

	// valueType returns the exact type that getValue will return. This is used
	// while preparing.
	valueType() reflect.Type
}

// systemContext carries everything a parameter might need to materialize.
type systemContext struct {
	store  *Store
	host   *Host
	logger *zap.Logger
	system *System
}

// noAccess can be embedded by parameters that do not touch shared state.
type noAccess struct{}

func (noAccess) declareAccess(*AccessTracker) error {
	return nil
}

// borrowed is a helper for parameters that borrow exactly one store value.
type borrowed struct {
	store  *Store
	ty     reflect.Type
	access Access
}

func (b *borrowed) declareAccess(tracker *AccessTracker) error {
	return tracker.declare(b.ty, b.access)
}

// acquire borrows the value and panics with a *MissingResourceError if the
// store does not hold one.
func (b *borrowed) acquire(store *Store) reflect.Value {
	value, ok := b.tryAcquire(store)
	if !ok {
		panic(&MissingResourceError{Type: b.ty})
	}

	return value
}

func (b *borrowed) tryAcquire(store *Store) (reflect.Value, bool) {
	value, ok := store.borrow(b.ty, b.access)
	if ok {
		b.store = store
	}

	return value, ok
}

func (b *borrowed) cleanupValue() {
	if b.store != nil {
		b.store.release(b.ty, b.access)
		b.store = nil
	}
}
