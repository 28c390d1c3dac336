package prom

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func namedSystem(*Local[int]) {}

func TestIntoSystem(t *testing.T) {
	t.Run("name", func(t *testing.T) {
		system := IntoSystem(namedSystem)
		require.Equal(t, "prom.namedSystem", system.Name)
		require.Same(t, system, IntoSystem(system))
	})

	t.Run("not a function", func(t *testing.T) {
		require.Panics(t, func() { IntoSystem(42) })
		require.Panics(t, func() { IntoSystem(nil) })
	})

	t.Run("return values", func(t *testing.T) {
		require.Panics(t, func() { IntoSystem(func() error { return nil }) })
	})

	t.Run("unsupported parameter", func(t *testing.T) {
		require.Panics(t, func() { IntoSystem(func(Counter) {}) })
		require.Panics(t, func() { IntoSystem(func(*Counter) {}) })
	})

	t.Run("parameter passed in the wrong form", func(t *testing.T) {
		require.Panics(t, func() { IntoSystem(func(Local[int]) {}) })
		require.Panics(t, func() { IntoSystem(func(*Res[Counter]) {}) })
	})

	t.Run("no parameters", func(t *testing.T) {
		var called bool
		s := NewScheduler()
		s.RunSystem(func() { called = true })
		require.True(t, called)
	})
}

func TestLocal(t *testing.T) {
	s := NewScheduler()

	var values []int
	s.InsertSystem(PhaseTick, func(counter *Local[int]) {
		counter.Value += 1
		values = append(values, counter.Value)
	})

	// a second system from the same function gets its own local
	s.InsertSystem(PhaseTick.Offset(0.5), func(counter *Local[int]) {
		counter.Value += 10
		values = append(values, counter.Value)
	})

	s.Run(PhaseTick, PhaseEnd)
	s.Run(PhaseTick, PhaseEnd)

	require.Equal(t, []int{1, 10, 2, 20}, values)
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewScheduler(WithLogger(zap.New(core)))

	s.InsertSystem(PhaseTick, func(log Log) {
		log.Info("Hello")
	})

	s.Run(PhaseTick, PhaseEnd)

	entries := logs.FilterMessage("Hello").All()
	require.Len(t, entries, 1)
	require.Contains(t, entries[0].ContextMap()["system"], "TestLog")
}

type fakeEventLoop struct {
	title string
	exit  bool
}

func (l *fakeEventLoop) SetTitle(title string) { l.title = title }
func (l *fakeEventLoop) RequestExit()          { l.exit = true }

func TestHost(t *testing.T) {
	s := NewScheduler()

	var loops []EventLoop
	s.InsertSystem(PhaseStart, func(host *Host) {
		loops = append(loops, host.EventLoop())
		host.EventLoop().SetTitle("prom")
	})

	loop := &fakeEventLoop{}
	s.RunStart(loop, nil)

	require.Equal(t, []EventLoop{loop}, loops)
	require.Equal(t, "prom", loop.title)

	t.Run("unavailable outside of RunStart", func(t *testing.T) {
		defer func() {
			err, _ := recover().(error)
			require.True(t, errors.Is(err, ErrHostUnavailable))
		}()

		s.Run(PhaseStart, PhaseTick)
	})

	t.Run("exclusive within a phase", func(t *testing.T) {
		s := NewScheduler()
		s.InsertSystem(PhaseStart, func(*Host) {})
		s.InsertSystem(PhaseStart, func(*Host) {})

		defer func() {
			err, _ := recover().(error)

			var conflict *AccessConflictError
			require.True(t, errors.As(err, &conflict))
		}()

		s.RunStart(&fakeEventLoop{}, nil)
	})
}
