package prom

import (
	"iter"
	"reflect"
	"slices"
)

// EventType returns a value to register an event queue for events
// of type E with App.RegisterEvent.
func EventType[E any]() NewEventType {
	return newEvent[E]{}
}

type NewEventType interface {
	configureEventIn(scheduler *Scheduler) bool
	String() string
}

type newEvent[E any] struct{}

func (newEvent[E]) configureEventIn(scheduler *Scheduler) bool {
	return RegisterEvent[E](scheduler)
}

func (newEvent[E]) String() string {
	return reflect.TypeFor[E]().String()
}

type queuedEvent[E any] struct {
	event    E
	consumed bool
}

// EventQueue holds the events of type E sent since the last tick boundary.
type EventQueue[E any] struct {
	_ noCopy

	events []queuedEvent[E]
}

func (q *EventQueue[E]) Send(event E) {
	q.events = append(q.events, queuedEvent[E]{event: event})
}

// Events yields all events in the order they were sent.
func (q *EventQueue[E]) Events() iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, queued := range q.events {
			if !yield(queued.event) {
				return
			}
		}
	}
}

func (q *EventQueue[E]) Len() int {
	return len(q.events)
}

// Tick marks all events as consumed and then drops every consumed event.
// An event is thus visible from the moment it is sent until the next tick.
func (q *EventQueue[E]) Tick() {
	for idx := range q.events {
		q.events[idx].consumed = true
	}

	q.events = slices.DeleteFunc(q.events, func(queued queuedEvent[E]) bool {
		return queued.consumed
	})
}

// ticker is implemented by every EventQueue.
type ticker interface {
	Tick()
}

// EventReader injects read access to the EventQueue of type E.
// Reading does not consume events.
type EventReader[E any] struct {
	borrowed
	queue *EventQueue[E]
}

func (r *EventReader[E]) init() SystemParamState {
	r.borrowed = borrowed{ty: reflect.TypeFor[EventQueue[E]](), access: Read}
	return r
}

func (r *EventReader[E]) getValue(sc systemContext) reflect.Value {
	r.queue = r.acquire(sc.store).Interface().(*EventQueue[E])
	return reflect.ValueOf(r).Elem()
}

func (r *EventReader[E]) cleanupValue() {
	r.borrowed.cleanupValue()
	r.queue = nil
}

func (*EventReader[E]) valueType() reflect.Type {
	return reflect.TypeFor[EventReader[E]]()
}

// Read yields all events currently in the queue.
func (r EventReader[E]) Read() iter.Seq[E] {
	return r.queue.Events()
}

func (r EventReader[E]) Len() int {
	return r.queue.Len()
}

// EventWriter injects write access to the EventQueue of type E.
type EventWriter[E any] struct {
	borrowed
	queue *EventQueue[E]
}

func (w *EventWriter[E]) init() SystemParamState {
	w.borrowed = borrowed{ty: reflect.TypeFor[EventQueue[E]](), access: Write}
	return w
}

func (w *EventWriter[E]) getValue(sc systemContext) reflect.Value {
	w.queue = w.acquire(sc.store).Interface().(*EventQueue[E])
	return reflect.ValueOf(w).Elem()
}

func (w *EventWriter[E]) cleanupValue() {
	w.borrowed.cleanupValue()
	w.queue = nil
}

func (*EventWriter[E]) valueType() reflect.Type {
	return reflect.TypeFor[EventWriter[E]]()
}

func (w EventWriter[E]) Send(event E) {
	w.queue.Send(event)
}
