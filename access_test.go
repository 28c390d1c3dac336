package prom

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAccessTracker(t *testing.T) {
	counterType := reflect.TypeFor[Counter]()
	scoreType := reflect.TypeFor[Score]()

	t.Run("shared reads", func(t *testing.T) {
		var tracker AccessTracker
		require.NoError(t, tracker.DeclareRead(counterType))
		require.NoError(t, tracker.DeclareRead(counterType))

		access, ok := tracker.Access(counterType)
		require.True(t, ok)
		require.Equal(t, Read, access)
	})

	t.Run("write excludes everything", func(t *testing.T) {
		var tracker AccessTracker
		require.NoError(t, tracker.DeclareWrite(counterType))

		err := tracker.DeclareRead(counterType)
		require.Equal(t, &AccessConflictError{Type: counterType, Held: Write, Requested: Read}, err)
		require.ErrorContains(t, err, "mutably and immutably")

		err = tracker.DeclareWrite(counterType)
		require.Equal(t, &AccessConflictError{Type: counterType, Held: Write, Requested: Write}, err)
		require.ErrorContains(t, err, "mutably twice")

		// other types are unaffected
		require.NoError(t, tracker.DeclareWrite(scoreType))
	})

	t.Run("read excludes write", func(t *testing.T) {
		var tracker AccessTracker
		require.NoError(t, tracker.DeclareRead(counterType))
		require.Error(t, tracker.DeclareWrite(counterType))

		// the failed declaration did not upgrade the access
		access, _ := tracker.Access(counterType)
		require.Equal(t, Read, access)
	})

	t.Run("clear", func(t *testing.T) {
		var tracker AccessTracker
		require.NoError(t, tracker.DeclareWrite(counterType))
		require.Equal(t, 1, tracker.Len())

		tracker.Clear()
		require.Zero(t, tracker.Len())
		require.NoError(t, tracker.DeclareWrite(counterType))
	})
}
