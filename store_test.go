package prom

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	counterType := reflect.TypeFor[Counter]()

	t.Run("insert and replace", func(t *testing.T) {
		var store Store
		require.False(t, store.Insert(Counter{Value: 1}))

		ptr, ok := storeValueOf[Counter](&store)
		require.True(t, ok)
		require.Equal(t, 1, ptr.Value)

		require.True(t, store.Insert(Counter{Value: 2}))
		require.Equal(t, 2, ptr.Value)
		require.Equal(t, 1, store.Len())

		_, ok = storeValueOf[Score](&store)
		require.False(t, ok)
	})

	t.Run("values are copied", func(t *testing.T) {
		var store Store
		counter := Counter{Value: 1}
		store.Insert(counter)
		counter.Value = 5

		ptr, _ := storeValueOf[Counter](&store)
		require.Equal(t, 1, ptr.Value)
	})

	t.Run("remove", func(t *testing.T) {
		var store Store
		store.Insert(Counter{})
		require.True(t, store.Contains(counterType))
		require.True(t, store.Remove(counterType))
		require.False(t, store.Remove(counterType))
		require.False(t, store.Contains(counterType))
	})

	t.Run("nil value", func(t *testing.T) {
		var store Store
		require.Panics(t, func() { store.Insert(nil) })
	})
}

func TestStore_Borrow(t *testing.T) {
	counterType := reflect.TypeFor[Counter]()

	newStore := func() *Store {
		var store Store
		store.Insert(Counter{})
		return &store
	}

	t.Run("many readers", func(t *testing.T) {
		store := newStore()
		_, ok := store.borrow(counterType, Read)
		require.True(t, ok)
		_, ok = store.borrow(counterType, Read)
		require.True(t, ok)

		require.PanicsWithError(t, (&BorrowError{Type: counterType, Held: Read, Requested: Write}).Error(), func() {
			store.borrow(counterType, Write)
		})

		store.release(counterType, Read)
		store.release(counterType, Read)

		_, ok = store.borrow(counterType, Write)
		require.True(t, ok)
	})

	t.Run("one writer", func(t *testing.T) {
		store := newStore()
		store.borrow(counterType, Write)

		require.Panics(t, func() { store.borrow(counterType, Read) })
		require.Panics(t, func() { store.borrow(counterType, Write) })

		// borrowed cells can not be replaced or removed
		require.Panics(t, func() { store.Insert(Counter{}) })
		require.Panics(t, func() { store.Remove(counterType) })

		store.release(counterType, Write)
		require.NotPanics(t, func() { store.Insert(Counter{}) })
	})

	t.Run("missing", func(t *testing.T) {
		store := newStore()
		_, ok := store.borrow(reflect.TypeFor[Score](), Read)
		require.False(t, ok)
	})
}

func TestStore_BorrowDuringRun(t *testing.T) {
	s := NewScheduler()
	s.InsertResource(Counter{})

	// replacing a resource a running system holds trips the borrow check
	s.InsertSystem(PhaseTick, func(counter ResMut[Counter]) {
		s.InsertResource(Counter{Value: 1})
	})

	defer func() {
		_, ok := recover().(*BorrowError)
		require.True(t, ok)
	}()

	s.Run(PhaseTick, PhaseEnd)
}
