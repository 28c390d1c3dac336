package prom

import (
	"slices"
	"testing"

	"github.com/oliverbestmann/prom/world"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestApp_Lifecycle(t *testing.T) {
	app := NewApp()

	var calls []string
	record := func(name string) AnySystem {
		return func(*Local[int]) { calls = append(calls, name) }
	}

	app.AddPlugin(PluginFunc(func(app *App) {
		app.InsertSystem(PhaseStart, record("start"))
		app.InsertSystem(PhaseTick, record("tick"))
		app.InsertSystem(PhaseEnd, record("end"))
	}))

	loop := &fakeEventLoop{}
	app.Resume(loop)

	// resume runs the start phases followed by the first tick
	require.Equal(t, []string{"start", "tick"}, calls)

	// a second resume does nothing
	app.Resume(loop)
	require.Equal(t, []string{"start", "tick"}, calls)

	app.Tick()
	app.Exit()
	app.Exit()
	app.Tick()

	require.Equal(t, []string{"start", "tick", "tick", "end"}, calls)
	require.True(t, app.Exited())
}

func TestApp_ResumeInsertsBookkeeping(t *testing.T) {
	app := NewApp()

	var spawned world.Entity
	app.InsertSystem(PhaseStart, func(ww WriteWorld, host *Host) {
		spawned = ww.SpawnLabeled("camera")
		require.Same(t, app, host.App())
	})

	var keys []KeyEvent
	app.InsertSystem(PhaseTick, func(reader EventReader[KeyEvent]) {
		keys = slices.AppendSeq(keys, reader.Read())
	})

	app.Resume(&fakeEventLoop{})

	registry, ok := ResourceOf[world.Registry](app.Scheduler())
	require.True(t, ok)

	entity, _ := registry.Lookup("camera")
	require.Equal(t, spawned, entity)

	require.True(t, Forward(app, KeyEvent{Key: "Space", Pressed: true}))
	require.True(t, Forward(app, ResizeEvent{Width: 80, Height: 24}))

	app.Tick()
	require.Equal(t, []KeyEvent{{Key: "Space", Pressed: true}}, keys)

	// the key event aged out
	app.Tick()
	require.Len(t, keys, 1)
}

func TestApp_ExitRequestedAtStart(t *testing.T) {
	app := NewApp()

	app.InsertSystem(PhaseStart, func(host *Host) {
		host.EventLoop().RequestExit()
	})

	loop := &fakeEventLoop{}
	app.Resume(loop)
	require.True(t, loop.exit)
}

func TestApp_InitResource(t *testing.T) {
	app := NewApp()
	app.InitResource(Counter{Value: 1})
	app.InitResource(Counter{Value: 2})

	counter, _ := ResourceOf[Counter](app.Scheduler())
	require.Equal(t, 1, counter.Value)
}

func TestApp_PhaseOffset(t *testing.T) {
	app := NewApp()

	var calls []string
	app.InsertSystem(PhaseTick.Offset(0.5), func() { calls = append(calls, "plain") })

	app.PhaseOffset = Phase(0).Offset(0.7)
	app.InsertSystem(PhaseTick, func() { calls = append(calls, "shifted") })
	app.InsertSystem(PhaseStart, func() { calls = append(calls, "shifted start") })
	app.PhaseOffset = 0

	app.InsertSystem(PhaseTick.Offset(0.6), func() { calls = append(calls, "between") })

	app.Resume(&fakeEventLoop{})

	// the shifted tick system now runs after the one inserted at 1.6
	require.Equal(t, []string{"shifted start", "plain", "between", "shifted"}, calls)

	t.Run("outside of the phase range", func(t *testing.T) {
		app.PhaseOffset = PhaseExit
		defer func() { app.PhaseOffset = 0 }()

		require.Panics(t, func() {
			app.InsertSystem(PhaseStart, func() {})
		})
	})
}

func TestApp_LogsInsertions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app := NewApp(WithLogger(zap.New(core)))

	app.PhaseOffset = Phase(0).Offset(0.25)
	app.InsertSystem(PhaseTick, func() {})

	require.False(t, app.InsertResource(Counter{Value: 1}))
	require.True(t, app.InsertResource(Counter{Value: 2}))

	app.RegisterEvent(EventType[KeyEvent]())

	systems := logs.FilterMessage("Inserting system").All()
	require.Len(t, systems, 1)
	require.Equal(t, PhaseTick.Offset(0.25).String(), systems[0].ContextMap()["phase"])

	require.Equal(t, 2, logs.FilterMessage("Inserting resource").Len())
	require.Equal(t, 1, logs.FilterMessage("Registering event").Len())
}
