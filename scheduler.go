package prom

import (
	"reflect"
	"slices"

	"github.com/oliverbestmann/prom/internal/assert"
	"go.uber.org/zap"
)

// Scheduler runs systems ordered by phase against a shared resource store.
//
// Within one phase, the accesses of all systems are tracked. A system that
// declares an access conflicting with an earlier system of the same phase
// aborts the run with a panic. Systems that need conflicting access must be
// placed into different phases.
//
// A Scheduler is not safe for concurrent use.
type Scheduler struct {
	// sorted, without duplicates
	phases  []Phase
	systems map[Phase][]*System

	store   Store
	tracker AccessTracker

	// types of registered event queues, in registration order
	events []reflect.Type

	logger *zap.Logger

	// set while RunStart is active
	host *Host

	running bool
}

type Option func(s *Scheduler)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func NewScheduler(options ...Option) *Scheduler {
	s := &Scheduler{
		systems: map[Phase][]*System{},
		logger:  zap.NewNop(),
	}

	for _, option := range options {
		option(s)
	}

	return s
}

func (s *Scheduler) Logger() *zap.Logger {
	return s.logger
}

// InsertSystem appends the system to the given phase. Systems of one phase
// run in insertion order. It panics with a *PhaseRangeError if the phase is
// not within [PhaseStart, PhaseExit).
//
// A system inserted while the scheduler runs takes effect with the next Run.
func (s *Scheduler) InsertSystem(phase Phase, system AnySystem) *System {
	if !phase.Valid() {
		panic(&PhaseRangeError{Phase: phase})
	}

	prepared := IntoSystem(system)

	idx, found := slices.BinarySearch(s.phases, phase)
	if !found {
		s.phases = slices.Insert(s.phases, idx, phase)
	}

	s.systems[phase] = append(s.systems[phase], prepared)

	s.logger.Debug("System inserted",
		zap.Stringer("phase", phase),
		zap.String("system", prepared.Name))

	return prepared
}

// Run executes every phase in [start, endExclusive) in ascending order.
//
// If start is PhaseTick, all event queues are ticked and the command queue
// is drained after the last phase. If endExclusive is PhaseTick, only the
// command queue is drained. Failing to drain is logged, not fatal.
func (s *Scheduler) Run(start, endExclusive Phase) {
	if s.running {
		panic("scheduler is already running")
	}

	s.running = true

	defer func() {
		s.running = false

		// a panicking system must not leave stale declarations behind
		s.tracker.Clear()
	}()

	lo, _ := slices.BinarySearch(s.phases, start)
	hi, _ := slices.BinarySearch(s.phases, endExclusive)

	if lo < hi {
		phases := slices.Clone(s.phases[lo:hi])

		for _, phase := range phases {
			s.runPhase(phase)
		}
	}

	switch {
	case start == PhaseTick:
		s.tickEvents()
		s.drainCommands()

	case endExclusive == PhaseTick:
		s.drainCommands()
	}
}

func (s *Scheduler) runPhase(phase Phase) {
	stats, measure := storeValueOf[TimingStats](&s.store)
	if measure {
		defer stats.MeasurePhase(phase).Stop()
	}

	sc := systemContext{
		store:  &s.store,
		host:   s.host,
		logger: s.logger,
	}

	for _, system := range slices.Clone(s.systems[phase]) {
		if measure {
			stopwatch := stats.MeasureSystem(system)
			system.run(sc, &s.tracker)
			stopwatch.Stop()
		} else {
			system.run(sc, &s.tracker)
		}
	}

	s.tracker.Clear()
}

func (s *Scheduler) tickEvents() {
	for _, ty := range s.events {
		queue, ok := s.store.Get(ty)
		if !ok {
			// queue was cleared
			continue
		}

		queue.(ticker).Tick()
	}
}

func (s *Scheduler) drainCommands() {
	if err := drainCommands(&s.store, s.logger); err != nil {
		s.logger.Warn("Failed to apply command queue", zap.Error(err))
	}
}

// RunStart runs [PhaseStart, PhaseTick) with the host handles available to
// Host parameters. The handles are dropped when RunStart returns.
func (s *Scheduler) RunStart(loop EventLoop, app *App) {
	s.host = &Host{loop: loop, app: app}
	defer func() { s.host = nil }()

	s.Run(PhaseStart, PhaseTick)
}

// RunSystem runs a single system once, outside of any phase.
func (s *Scheduler) RunSystem(system AnySystem) {
	var tracker AccessTracker

	sc := systemContext{
		store:  &s.store,
		host:   s.host,
		logger: s.logger,
	}

	IntoSystem(system).run(sc, &tracker)
}

// InsertResource stores the value under its dynamic type. An existing value
// of the same type is replaced and InsertResource returns true.
func (s *Scheduler) InsertResource(value any) bool {
	replaced := s.store.Insert(value)

	if replaced {
		s.logger.Warn("Resource replaced", zap.Stringer("type", reflect.TypeOf(value)))
	}

	return replaced
}

// RemoveResource removes the resource of type ty and reports whether it existed.
func (s *Scheduler) RemoveResource(ty reflect.Type) bool {
	return s.store.Remove(ty)
}

// ContainsResource reports whether a resource of type ty is present.
func (s *Scheduler) ContainsResource(ty reflect.Type) bool {
	return s.store.Contains(ty)
}

// ResourceOf returns a pointer to the resource of type T. The pointer must not
// be used while the scheduler runs a system that borrows the resource.
func ResourceOf[T any](s *Scheduler) (*T, bool) {
	return storeValueOf[T](&s.store)
}

// ClearResource removes the resource of type T.
func ClearResource[T any](s *Scheduler) bool {
	return s.store.Remove(reflect.TypeFor[T]())
}

// RegisterEvent adds an empty EventQueue for events of type E. The queue
// is ticked whenever the scheduler runs from PhaseTick. Registering again
// empties the queue and returns true.
func RegisterEvent[E any](s *Scheduler) bool {
	assert.IsNonPointerType(reflect.TypeFor[E]())

	ty := reflect.TypeFor[EventQueue[E]]()

	replaced := s.store.insertZero(ty)
	if replaced {
		s.logger.Warn("Event queue registered twice", zap.Stringer("event", reflect.TypeFor[E]()))
	}

	if !slices.Contains(s.events, ty) {
		s.events = append(s.events, ty)
	}

	return replaced
}

// RetrieveEventWriter returns a writer for the event queue of type E, for
// hosts to forward events from outside of a system. It must not be used
// while the scheduler runs.
func RetrieveEventWriter[E any](s *Scheduler) (EventWriter[E], bool) {
	queue, ok := storeValueOf[EventQueue[E]](&s.store)
	if !ok {
		return EventWriter[E]{}, false
	}

	return EventWriter[E]{queue: queue}, true
}

// RetrieveEventReader returns a reader for the event queue of type E.
func RetrieveEventReader[E any](s *Scheduler) (EventReader[E], bool) {
	queue, ok := storeValueOf[EventQueue[E]](&s.store)
	if !ok {
		return EventReader[E]{}, false
	}

	return EventReader[E]{queue: queue}, true
}
