package prom

import (
	"math"
	"strconv"
)

// Phase is the key systems are ordered by. It is a fixed point number
// with Interval steps per whole unit, so PhaseOf(1.5) is half way between
// PhaseTick and PhaseEnd.
type Phase int64

const Interval Phase = 1_000_000

// Epsilon is the smallest distance between two phases.
const Epsilon Phase = 1

const (
	// PhaseStart runs once, when the host is resumed. Host handles are
	// available to systems in [PhaseStart, PhaseTick).
	PhaseStart Phase = 0 * Interval

	// PhaseTick runs once per frame. Event queues are ticked and the
	// command queue is drained after [PhaseTick, PhaseEnd) ran.
	PhaseTick Phase = 1 * Interval

	// PhaseEnd runs once, when the host requests to close.
	PhaseEnd Phase = 2 * Interval

	// PhaseExit is the exclusive upper bound of all phases.
	PhaseExit Phase = 3 * Interval
)

// PhaseOf converts a decimal phase like 1.001 to a Phase.
func PhaseOf(value float64) Phase {
	return Phase(math.Round(value * float64(Interval)))
}

// Offset returns the phase moved by a decimal delta.
func (p Phase) Offset(delta float64) Phase {
	return p + PhaseOf(delta)
}

func (p Phase) Float() float64 {
	return float64(p) / float64(Interval)
}

// Valid reports whether systems may be inserted at this phase.
func (p Phase) Valid() bool {
	return p >= PhaseStart && p < PhaseExit
}

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "Start"
	case PhaseTick:
		return "Tick"
	case PhaseEnd:
		return "End"
	case PhaseExit:
		return "Exit"
	}

	return strconv.FormatFloat(p.Float(), 'f', -1, 64)
}
