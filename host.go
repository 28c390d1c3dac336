package prom

import (
	"reflect"

	"github.com/pkg/errors"
)

// EventLoop is the part of a host driver that systems may control while
// the start phases run.
type EventLoop interface {
	SetTitle(title string)

	// RequestExit asks the host to close. The end phases run before the
	// host shuts down.
	RequestExit()
}

// Host injects the event loop and the App of the host driver. It is only
// available to systems in [PhaseStart, PhaseTick) when the scheduler is run
// through RunStart. Materializing it at any other time panics with
// ErrHostUnavailable.
type Host struct {
	loop EventLoop
	app  *App
}

func (h *Host) EventLoop() EventLoop {
	return h.loop
}

func (h *Host) App() *App {
	return h.app
}

func (h *Host) init() SystemParamState {
	return h
}

func (h *Host) declareAccess(tracker *AccessTracker) error {
	return tracker.DeclareWrite(reflect.TypeFor[Host]())
}

func (h *Host) getValue(sc systemContext) reflect.Value {
	if sc.host == nil {
		panic(errors.WithStack(ErrHostUnavailable))
	}

	*h = *sc.host
	return reflect.ValueOf(h)
}

func (h *Host) cleanupValue() {
	*h = Host{}
}

func (*Host) valueType() reflect.Type {
	return reflect.TypeFor[*Host]()
}

// KeyEvent is forwarded by host drivers for every key press and release.
type KeyEvent struct {
	// Key is the name of the key as reported by the host, e.g. "Space" or "A".
	Key string

	// Rune is the character of the key, if any.
	Rune rune

	Pressed bool
}

// ResizeEvent is forwarded by host drivers when the drawable area changes.
type ResizeEvent struct {
	Width, Height int
}
