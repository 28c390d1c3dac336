package prom

import (
	"reflect"

	"github.com/oliverbestmann/prom/internal/refl"
	"github.com/oliverbestmann/prom/world"
	"go.uber.org/zap"
)

// App wraps a Scheduler with the lifecycle a host driver expects:
// Resume once, Tick once per frame and Exit once.
type App struct {
	scheduler *Scheduler
	logger    *zap.Logger

	// PhaseOffset is added to the phase of every system inserted through
	// the App. Plugins use it to shift a group of systems as a whole.
	PhaseOffset Phase

	resumed bool
	exited  bool
}

func NewApp(options ...Option) *App {
	scheduler := NewScheduler(options...)

	return &App{
		scheduler: scheduler,
		logger:    scheduler.Logger().Named("app"),
	}
}

func (a *App) Scheduler() *Scheduler {
	return a.scheduler
}

func (a *App) Logger() *zap.Logger {
	return a.logger
}

func (a *App) AddPlugin(plugin Plugin) {
	a.logger.Info("Adding plugin", zap.String("plugin", pluginName(plugin)))
	plugin.ApplyTo(a)
}

// InsertSystem inserts the system at phase shifted by PhaseOffset.
func (a *App) InsertSystem(phase Phase, system AnySystem) {
	phase += a.PhaseOffset

	prepared := a.scheduler.InsertSystem(phase, system)

	a.logger.Info("Inserting system",
		zap.Stringer("phase", phase),
		zap.String("system", prepared.Name))
}

// InsertResource inserts or replaces the resource. It returns true if a
// previous value was replaced.
func (a *App) InsertResource(value any) bool {
	a.logger.Info("Inserting resource", zap.Stringer("type", reflect.TypeOf(value)))
	return a.scheduler.InsertResource(value)
}

// InitResource inserts the value only if no resource of its type exists yet.
func (a *App) InitResource(value any) {
	if !a.scheduler.ContainsResource(reflect.TypeOf(value)) {
		a.InsertResource(value)
	}
}

func (a *App) RegisterEvent(event NewEventType) {
	a.logger.Info("Registering event", zap.Stringer("event", event))
	event.configureEventIn(a.scheduler)
}

// Resume prepares the bookkeeping resources, runs the start phases with the
// host handles available and then runs the first tick. Subsequent calls
// do nothing.
func (a *App) Resume(loop EventLoop) {
	if a.resumed {
		return
	}

	a.resumed = true

	a.InitResource(world.World{})
	a.InitResource(world.Registry{})
	a.InitResource(CommandQueue{})
	a.InitResource(CommandBuffer{})

	if !a.scheduler.ContainsResource(reflect.TypeFor[EventQueue[KeyEvent]]()) {
		a.RegisterEvent(EventType[KeyEvent]())
	}

	if !a.scheduler.ContainsResource(reflect.TypeFor[EventQueue[ResizeEvent]]()) {
		a.RegisterEvent(EventType[ResizeEvent]())
	}

	a.logger.Info("Resumed, running start phases")
	a.scheduler.RunStart(loop, a)

	a.Tick()
}

// Tick runs [PhaseTick, PhaseEnd) followed by the tick bookkeeping.
func (a *App) Tick() {
	if a.exited {
		return
	}

	a.scheduler.Run(PhaseTick, PhaseEnd)
}

// Exit runs [PhaseEnd, PhaseExit) once. Ticks after Exit do nothing.
func (a *App) Exit() {
	if a.exited {
		return
	}

	a.exited = true

	a.logger.Info("Exiting, running end phases")
	a.scheduler.Run(PhaseEnd, PhaseExit)
}

func (a *App) Exited() bool {
	return a.exited
}

// Forward sends a host event into the event queue of type E. It returns
// false and logs a warning if no such queue is registered.
func Forward[E any](a *App, event E) bool {
	writer, ok := RetrieveEventWriter[E](a.scheduler)
	if !ok {
		a.logger.Warn("No event queue for host event", zap.Stringer("event", reflect.TypeFor[E]()))
		return false
	}

	writer.Send(event)
	return true
}

type Plugin interface {
	ApplyTo(app *App)
}

type PluginFunc func(app *App)

func (plugin PluginFunc) ApplyTo(app *App) {
	plugin(app)
}

func pluginName(plugin Plugin) string {
	if fn, ok := plugin.(PluginFunc); ok {
		return refl.FuncName(reflect.ValueOf(fn))
	}

	return reflect.TypeOf(plugin).String()
}
