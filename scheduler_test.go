package prom

import (
	"reflect"
	"slices"
	"testing"

	"github.com/oliverbestmann/prom/world"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type Counter struct {
	Value int
}

type Score struct {
	Value int
}

type Ping struct {
	N int
}

// requireConflict runs fn and expects it to panic with an access conflict on ty.
func requireConflict(t *testing.T, ty reflect.Type, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()

		recovered := recover()
		require.NotNil(t, recovered, "expected an access conflict")

		err, ok := recovered.(error)
		require.True(t, ok, "panic value is not an error: %v", recovered)

		var conflict *AccessConflictError
		require.True(t, errors.As(err, &conflict), "expected *AccessConflictError, got %s", err)
		require.Equal(t, ty, conflict.Type)
		require.Contains(t, err.Error(), ty.String())
	}()

	fn()
}

func TestScheduler_AccessConflicts(t *testing.T) {
	counterType := reflect.TypeFor[Counter]()
	phase := PhaseTick.Offset(0.5)

	reader := func(Res[Counter]) {}
	writer := func(ResMut[Counter]) {}

	t.Run("two writers", func(t *testing.T) {
		s := NewScheduler()
		s.InsertResource(Counter{})
		s.InsertSystem(phase, writer)
		s.InsertSystem(phase, writer)

		requireConflict(t, counterType, func() { s.Run(PhaseTick, PhaseEnd) })
	})

	t.Run("reader then writer", func(t *testing.T) {
		s := NewScheduler()
		s.InsertResource(Counter{})
		s.InsertSystem(phase, reader)
		s.InsertSystem(phase, writer)

		requireConflict(t, counterType, func() { s.Run(PhaseTick, PhaseEnd) })
	})

	t.Run("writer then reader", func(t *testing.T) {
		s := NewScheduler()
		s.InsertResource(Counter{})
		s.InsertSystem(phase, writer)
		s.InsertSystem(phase, reader)

		requireConflict(t, counterType, func() { s.Run(PhaseTick, PhaseEnd) })
	})

	t.Run("read and write within one system", func(t *testing.T) {
		s := NewScheduler()
		s.InsertResource(Counter{})
		s.InsertSystem(phase, func(Res[Counter], ResMut[Counter]) {})

		requireConflict(t, counterType, func() { s.Run(PhaseTick, PhaseEnd) })
	})

	t.Run("event reader and writer", func(t *testing.T) {
		s := NewScheduler()
		RegisterEvent[Ping](s)
		s.InsertSystem(phase, func(EventWriter[Ping]) {})
		s.InsertSystem(phase, func(EventReader[Ping]) {})

		requireConflict(t, reflect.TypeFor[EventQueue[Ping]](), func() { s.Run(PhaseTick, PhaseEnd) })
	})

	t.Run("world reader and spawner", func(t *testing.T) {
		s := newBookkeepingScheduler()
		s.InsertSystem(phase, func(RefWorld) {})
		s.InsertSystem(phase, func(WriteWorld) {})

		requireConflict(t, reflect.TypeFor[world.World](), func() { s.Run(PhaseTick, PhaseEnd) })
	})

	t.Run("conflicts are detected on every run", func(t *testing.T) {
		s := NewScheduler()
		s.InsertResource(Counter{})
		s.InsertSystem(phase, writer)
		s.InsertSystem(phase, writer)

		requireConflict(t, counterType, func() { s.Run(PhaseTick, PhaseEnd) })
		requireConflict(t, counterType, func() { s.Run(PhaseTick, PhaseEnd) })
	})
}

func TestScheduler_SharedReads(t *testing.T) {
	s := NewScheduler()
	s.InsertResource(Counter{Value: 7})

	var observed []int
	reader := func(counter Res[Counter]) {
		observed = append(observed, counter.Get().Value)
	}

	s.InsertSystem(PhaseTick, reader)
	s.InsertSystem(PhaseTick, reader)
	s.InsertSystem(PhaseTick, func(a Res[Counter], b Res[Counter]) {
		require.Same(t, a.Get(), b.Get())
	})

	s.Run(PhaseTick, PhaseEnd)
	require.Equal(t, []int{7, 7}, observed)
}

func TestScheduler_WritesInDifferentPhases(t *testing.T) {
	s := NewScheduler()
	s.InsertResource(Counter{})

	increment := func(counter ResMut[Counter]) {
		counter.Get().Value += 1
	}

	s.InsertSystem(PhaseTick.Offset(0.1), increment)
	s.InsertSystem(PhaseTick.Offset(0.2), increment)

	// one call spanning both phases
	s.Run(PhaseTick, PhaseEnd)

	// two separate calls
	s.Run(PhaseTick, PhaseTick.Offset(0.15))
	s.Run(PhaseTick.Offset(0.15), PhaseEnd)

	counter, _ := ResourceOf[Counter](s)
	require.Equal(t, 4, counter.Value)
}

func TestScheduler_Ordering(t *testing.T) {
	s := NewScheduler()

	var order []string
	record := func(name string) AnySystem {
		return func(*Local[int]) { order = append(order, name) }
	}

	s.InsertSystem(PhaseTick.Offset(0.5), record("c"))
	s.InsertSystem(PhaseTick, record("a"))
	s.InsertSystem(PhaseTick.Offset(0.5), record("d"))
	s.InsertSystem(PhaseTick.Offset(0.25), record("b"))
	s.InsertSystem(PhaseStart, record("start"))
	s.InsertSystem(PhaseEnd, record("end"))

	s.Run(PhaseTick, PhaseEnd)
	require.Equal(t, []string{"a", "b", "c", "d"}, order)

	order = nil
	s.Run(PhaseStart, PhaseExit)
	require.Equal(t, []string{"start", "a", "b", "c", "d", "end"}, order)
}

func TestScheduler_InsertSystemRange(t *testing.T) {
	s := NewScheduler()
	noop := func(*Local[int]) {}

	require.NotPanics(t, func() { s.InsertSystem(PhaseStart, noop) })
	require.NotPanics(t, func() { s.InsertSystem(PhaseExit-Epsilon, noop) })

	for _, phase := range []Phase{PhaseStart - Epsilon, PhaseExit, PhaseExit + Interval} {
		require.PanicsWithError(t, (&PhaseRangeError{Phase: phase}).Error(), func() {
			s.InsertSystem(phase, noop)
		})
	}
}

func TestScheduler_InsertResource(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewScheduler(WithLogger(zap.New(core)))

	require.False(t, s.InsertResource(Counter{Value: 1}))
	require.Zero(t, logs.Len())

	counter, _ := ResourceOf[Counter](s)

	require.True(t, s.InsertResource(Counter{Value: 2}))
	require.Equal(t, 1, logs.FilterMessage("Resource replaced").Len())

	// replaced in place
	require.Equal(t, 2, counter.Value)

	require.True(t, ClearResource[Counter](s))
	require.False(t, ClearResource[Counter](s))

	_, ok := ResourceOf[Counter](s)
	require.False(t, ok)
}

func TestScheduler_RemoveResource(t *testing.T) {
	s := NewScheduler()
	counterType := reflect.TypeFor[Counter]()

	require.False(t, s.ContainsResource(counterType))
	require.False(t, s.RemoveResource(counterType))

	s.InsertResource(Counter{Value: 1})
	require.True(t, s.ContainsResource(counterType))

	require.True(t, s.RemoveResource(counterType))
	require.False(t, s.ContainsResource(counterType))
	require.False(t, s.RemoveResource(counterType))
}

func TestScheduler_MissingResource(t *testing.T) {
	s := NewScheduler()
	s.InsertSystem(PhaseTick, func(Res[Counter]) {})

	defer func() {
		var missing *MissingResourceError
		require.True(t, errors.As(recover().(error), &missing))
		require.Equal(t, reflect.TypeFor[Counter](), missing.Type)
	}()

	s.Run(PhaseTick, PhaseEnd)
}

func TestScheduler_ResOption(t *testing.T) {
	s := NewScheduler()

	var values []*Counter
	s.InsertSystem(PhaseTick, func(counter ResOption[Counter]) {
		values = append(values, counter.Value)
	})

	s.Run(PhaseTick, PhaseEnd)

	s.InsertResource(Counter{Value: 3})
	s.Run(PhaseTick, PhaseEnd)

	require.Len(t, values, 2)
	require.Nil(t, values[0])
	require.Equal(t, 3, values[1].Value)
}

func TestScheduler_PanicReleasesBorrows(t *testing.T) {
	s := NewScheduler()
	s.InsertResource(Counter{})

	fail := true
	s.InsertSystem(PhaseTick, func(counter ResMut[Counter]) {
		if fail {
			panic("system failed")
		}

		counter.Get().Value += 1
	})

	require.PanicsWithValue(t, "system failed", func() { s.Run(PhaseTick, PhaseEnd) })

	fail = false
	require.NotPanics(t, func() { s.Run(PhaseTick, PhaseEnd) })

	counter, _ := ResourceOf[Counter](s)
	require.Equal(t, 1, counter.Value)
}

func TestScheduler_Events(t *testing.T) {
	s := NewScheduler()
	require.False(t, RegisterEvent[Ping](s))

	send := true
	var received [][]Ping

	s.InsertSystem(PhaseTick.Offset(0.5), func(writer EventWriter[Ping]) {
		if send {
			writer.Send(Ping{N: 1})
		}
	})

	s.InsertSystem(PhaseTick.Offset(0.6), func(reader EventReader[Ping]) {
		received = append(received, slices.Collect(reader.Read()))
	})

	// tick 1 sends and reads
	s.Run(PhaseTick, PhaseEnd)
	require.Equal(t, [][]Ping{{{N: 1}}}, received)

	// tick 2 does not send, the event has aged out
	send = false
	s.Run(PhaseTick, PhaseEnd)
	require.Len(t, received, 2)
	require.Empty(t, received[1])
}

func TestScheduler_EventsOnlyTickAtTickBoundary(t *testing.T) {
	s := NewScheduler()
	RegisterEvent[Ping](s)

	writer, ok := RetrieveEventWriter[Ping](s)
	require.True(t, ok)
	writer.Send(Ping{N: 2})

	reader, ok := RetrieveEventReader[Ping](s)
	require.True(t, ok)

	s.Run(PhaseStart, PhaseTick)
	require.Equal(t, 1, reader.Len())

	s.Run(PhaseEnd, PhaseExit)
	require.Equal(t, 1, reader.Len())

	s.Run(PhaseTick, PhaseEnd)
	require.Zero(t, reader.Len())

	_, ok = RetrieveEventWriter[Score](s)
	require.False(t, ok)
}

func TestScheduler_RegisterEventTwice(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewScheduler(WithLogger(zap.New(core)))

	require.False(t, RegisterEvent[Ping](s))

	writer, _ := RetrieveEventWriter[Ping](s)
	writer.Send(Ping{})

	require.True(t, RegisterEvent[Ping](s))
	require.Equal(t, 1, logs.Len())

	reader, _ := RetrieveEventReader[Ping](s)
	require.Zero(t, reader.Len())
	require.Len(t, s.events, 1)
}

func TestScheduler_NestedRun(t *testing.T) {
	s := NewScheduler()
	s.InsertSystem(PhaseTick, func(*Local[int]) {
		s.Run(PhaseTick, PhaseEnd)
	})

	require.PanicsWithValue(t, "scheduler is already running", func() {
		s.Run(PhaseTick, PhaseEnd)
	})
}

func TestScheduler_TimingStats(t *testing.T) {
	s := NewScheduler()
	s.InsertResource(NewTimingStats())

	system := s.InsertSystem(PhaseTick.Offset(0.5), func(*Local[int]) {})

	s.Run(PhaseTick, PhaseEnd)
	s.Run(PhaseTick, PhaseEnd)

	stats, _ := ResourceOf[TimingStats](s)
	require.Equal(t, []Phase{PhaseTick.Offset(0.5)}, stats.PhaseOrder)
	require.Equal(t, 2, stats.ByPhase[PhaseTick.Offset(0.5)].Count)
	require.Equal(t, 2, stats.BySystem[system.Name].Count)
}

func TestScheduler_RunSystem(t *testing.T) {
	s := NewScheduler()
	s.InsertResource(Counter{})

	increment := IntoSystem(func(counter ResMut[Counter], calls *Local[int]) {
		calls.Value += 1
		counter.Get().Value = calls.Value * 10
	})

	s.RunSystem(increment)
	s.RunSystem(increment)

	counter, _ := ResourceOf[Counter](s)
	require.Equal(t, 20, counter.Value)
}
