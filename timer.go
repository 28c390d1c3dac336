package prom

import (
	"math"
	"time"
)

type TimerMode uint8

const (
	TimerOnce TimerMode = iota
	TimerRepeating
)

// Timer counts down a duration. Systems typically keep a Timer in a Local
// and advance it with the Delta of the Clock.
type Timer struct {
	duration time.Duration
	elapsed  time.Duration
	mode     TimerMode

	finished       bool
	finishedInTick uint32
}

func NewTimer(duration time.Duration, mode TimerMode) Timer {
	return Timer{duration: duration, mode: mode}
}

// Tick advances the timer by delta.
func (t *Timer) Tick(delta time.Duration) *Timer {
	t.finishedInTick = 0

	if t.duration <= 0 || (t.finished && t.mode == TimerOnce) {
		return t
	}

	t.elapsed += delta
	if t.elapsed < t.duration {
		return t
	}

	switch t.mode {
	case TimerOnce:
		t.elapsed = t.duration
		t.finished = true
		t.finishedInTick = 1

	case TimerRepeating:
		t.finishedInTick = uint32(min(math.MaxUint32, t.elapsed/t.duration))
		t.elapsed %= t.duration
	}

	return t
}

func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) Elapsed() time.Duration {
	return t.elapsed
}

// Fraction is zero for a fresh timer and one for a finished one.
func (t *Timer) Fraction() float64 {
	if t.duration <= 0 {
		return 0
	}

	return float64(t.elapsed) / float64(t.duration)
}

// Finished is never true for a repeating timer.
func (t *Timer) Finished() bool {
	return t.finished
}

// JustFinished reports whether the last call to Tick reached the duration.
func (t *Timer) JustFinished() bool {
	return t.finishedInTick > 0
}

// TimesFinished returns how often the duration was reached during the last
// call to Tick. A repeating one second timer ticked by 3.5 seconds finishes
// three times.
func (t *Timer) TimesFinished() int {
	return int(t.finishedInTick)
}

func (t *Timer) Reset() {
	t.elapsed = 0
	t.finished = false
	t.finishedInTick = 0
}
