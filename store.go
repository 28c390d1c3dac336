package prom

import "reflect"

// cell owns one heap allocated resource value and counts its borrows.
type cell struct {
	// pointer to the value
	value reflect.Value

	readers int
	writing bool
}

func (c *cell) held() Access {
	switch {
	case c.writing:
		return Write
	case c.readers > 0:
		return Read
	default:
		return 0
	}
}

// Store holds at most one value per type. The zero value is ready to use.
//
// Values handed out to systems are borrowed from their cell and released
// after the system returned. A borrow that conflicts with an existing one
// panics with a *BorrowError.
type Store struct {
	cells map[reflect.Type]*cell
}

// Insert copies value into the store. If a value of the same type already
// exists it is overwritten in place and Insert returns true.
func (s *Store) Insert(value any) (replaced bool) {
	if value == nil {
		panic("can not insert a nil resource")
	}

	rValue := reflect.ValueOf(value)

	if c, ok := s.cells[rValue.Type()]; ok {
		s.assertNotBorrowed(rValue.Type(), c)
		c.value.Elem().Set(rValue)
		return true
	}

	ptr := reflect.New(rValue.Type())
	ptr.Elem().Set(rValue)
	s.put(rValue.Type(), ptr)

	return false
}

// insertZero allocates a new zero value of the type in place,
// so types that must not be copied never are.
func (s *Store) insertZero(ty reflect.Type) (replaced bool) {
	if c, ok := s.cells[ty]; ok {
		s.assertNotBorrowed(ty, c)
		c.value.Elem().SetZero()
		return true
	}

	s.put(ty, reflect.New(ty))
	return false
}

func (s *Store) put(ty reflect.Type, ptr reflect.Value) {
	if s.cells == nil {
		s.cells = map[reflect.Type]*cell{}
	}

	s.cells[ty] = &cell{value: ptr}
}

// Remove drops the value of the given type.
func (s *Store) Remove(ty reflect.Type) bool {
	c, ok := s.cells[ty]
	if !ok {
		return false
	}

	s.assertNotBorrowed(ty, c)
	delete(s.cells, ty)

	return true
}

func (s *Store) Contains(ty reflect.Type) bool {
	_, ok := s.cells[ty]
	return ok
}

func (s *Store) Len() int {
	return len(s.cells)
}

// Get returns a pointer to the value of the type without borrowing it.
func (s *Store) Get(ty reflect.Type) (any, bool) {
	c, ok := s.cells[ty]
	if !ok {
		return nil, false
	}

	return c.value.Interface(), true
}

// borrow returns the pointer to the value and records the borrow.
func (s *Store) borrow(ty reflect.Type, access Access) (reflect.Value, bool) {
	c, ok := s.cells[ty]
	if !ok {
		return reflect.Value{}, false
	}

	if c.writing || (access == Write && c.readers > 0) {
		panic(&BorrowError{Type: ty, Held: c.held(), Requested: access})
	}

	if access == Write {
		c.writing = true
	} else {
		c.readers += 1
	}

	return c.value, true
}

func (s *Store) release(ty reflect.Type, access Access) {
	c, ok := s.cells[ty]
	if !ok {
		return
	}

	if access == Write {
		c.writing = false
	} else if c.readers > 0 {
		c.readers -= 1
	}
}

func (s *Store) assertNotBorrowed(ty reflect.Type, c *cell) {
	if held := c.held(); held != 0 {
		panic(&BorrowError{Type: ty, Held: held, Requested: Write})
	}
}

func storeValueOf[T any](s *Store) (*T, bool) {
	value, ok := s.Get(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}

	return value.(*T), true
}
