package prom

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
)

// ErrBookkeepingResourceMissing is returned when the command queue can not
// be drained because the world, the registry or the queue itself is not
// present. It is logged by the scheduler and never fatal.
var ErrBookkeepingResourceMissing = errors.New("bookkeeping resource missing")

// ErrHostUnavailable is the panic value of a Host parameter materialized
// outside of Scheduler.RunStart.
var ErrHostUnavailable = errors.New("host handles are only available during the start phases")

// AccessConflictError is raised when two parameters of the systems in one
// phase declare incompatible access to the same type.
type AccessConflictError struct {
	Type      reflect.Type
	Held      Access
	Requested Access
}

func (err *AccessConflictError) Error() string {
	if err.Held == Write && err.Requested == Write {
		return fmt.Sprintf("conflicting access in system; attempting to access %s mutably twice; consider creating a new phase", err.Type)
	}

	return fmt.Sprintf("conflicting access in system; attempting to access %s mutably and immutably at the same time; consider creating a new phase", err.Type)
}

// MissingResourceError is raised when a parameter is materialized for a
// resource that is not in the store.
type MissingResourceError struct {
	Type reflect.Type
}

func (err *MissingResourceError) Error() string {
	return fmt.Sprintf("no value for resource of type %s", err.Type)
}

// BorrowError is raised by the runtime borrow check of a store cell.
type BorrowError struct {
	Type      reflect.Type
	Held      Access
	Requested Access
}

func (err *BorrowError) Error() string {
	return fmt.Sprintf("resource %s already borrowed for %s, can not borrow for %s", err.Type, err.Held, err.Requested)
}

// PhaseRangeError is raised when a system is inserted outside of [PhaseStart, PhaseExit).
type PhaseRangeError struct {
	Phase Phase
}

func (err *PhaseRangeError) Error() string {
	return fmt.Sprintf("phase %s out of range [%s, %s)", err.Phase, PhaseStart, PhaseExit)
}
