package prom

import "reflect"

type Access uint8

const (
	Read Access = iota + 1
	Write
)

func (a Access) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "none"
	}
}

// AccessTracker records the accesses declared by the systems of one phase.
// Any number of readers or exactly one writer may be declared per type.
type AccessTracker struct {
	accesses map[reflect.Type]Access
}

func (t *AccessTracker) DeclareRead(ty reflect.Type) error {
	return t.declare(ty, Read)
}

func (t *AccessTracker) DeclareWrite(ty reflect.Type) error {
	return t.declare(ty, Write)
}

func (t *AccessTracker) declare(ty reflect.Type, access Access) error {
	if t.accesses == nil {
		t.accesses = map[reflect.Type]Access{}
	}

	held, ok := t.accesses[ty]
	if ok && (held == Write || access == Write) {
		return &AccessConflictError{Type: ty, Held: held, Requested: access}
	}

	t.accesses[ty] = access
	return nil
}

// Access returns the access declared for the type, if any.
func (t *AccessTracker) Access(ty reflect.Type) (Access, bool) {
	access, ok := t.accesses[ty]
	return access, ok
}

func (t *AccessTracker) Len() int {
	return len(t.accesses)
}

func (t *AccessTracker) Clear() {
	clear(t.accesses)
}
