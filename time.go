package prom

import (
	"time"

	"go.uber.org/zap"
)

// UpdateClockPhase runs right after PhaseTick so that all tick systems
// but the very first see the clock of the current frame.
var UpdateClockPhase = PhaseTick.Offset(0.001)

// Clock tracks the time between ticks.
//
// The progression of time can be scaled by setting the Scale field.
// This will scale the Delta and DeltaSecs values starting at the next tick.
type Clock struct {
	Start   time.Time
	Now     time.Time
	Elapsed time.Duration

	Delta     time.Duration
	DeltaSecs float64

	// Ticks counts the number of clock updates
	Ticks uint64

	Scale float64
}

// Rate returns the number of ticks per second measured over the last tick.
func (c Clock) Rate() float64 {
	if c.Delta <= 0 {
		return 0
	}

	return 1 / c.DeltaSecs
}

// ClockPlugin inserts a Clock resource and updates it once per tick.
type ClockPlugin struct {
	// Phase to update the clock at, defaults to UpdateClockPhase. Any
	// phase including PhaseStart can be chosen.
	Phase *Phase

	// Now returns the current time, defaults to time.Now
	Now func() time.Time

	// Scale is the initial time scale, defaults to 1
	Scale float64
}

func (p ClockPlugin) ApplyTo(app *App) {
	phase := UpdateClockPhase
	if p.Phase != nil {
		phase = *p.Phase
	}

	now := p.Now
	if now == nil {
		now = time.Now
	}

	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}

	start := now()
	app.InsertResource(Clock{Start: start, Now: start, Scale: scale})

	app.InsertSystem(phase, func(clock ResMut[Clock], lastTime *Local[time.Time]) {
		updateClock(clock.Get(), lastTime, now())
	})
}

func updateClock(clock *Clock, lastTime *Local[time.Time], now time.Time) {
	if lastTime.Value.IsZero() {
		lastTime.Value = clock.Now
	}

	delta := time.Duration(float64(now.Sub(lastTime.Value)) * clock.Scale)
	lastTime.Value = now

	clock.Now = now
	clock.Delta = delta
	clock.DeltaSecs = delta.Seconds()
	clock.Elapsed += delta
	clock.Ticks += 1
}

// FPS holds the frame rate averaged over the interval of the FPSPlugin.
type FPS struct {
	Value float64
}

// FPSPlugin measures the frame rate using the Clock and logs it every Interval.
// It requires the ClockPlugin.
type FPSPlugin struct {
	Interval time.Duration
}

func (p FPSPlugin) ApplyTo(app *App) {
	app.InsertResource(FPS{})
	app.InsertSystem(UpdateClockPhase.Offset(0.001), FPSCounter(p.Interval))
}

type fpsAccumulator struct {
	since  time.Time
	frames int
}

// FPSCounter returns a system that updates the FPS resource once per interval.
func FPSCounter(interval time.Duration) AnySystem {
	return func(clock Res[Clock], fps ResMut[FPS], acc *Local[fpsAccumulator], log Log) {
		now := clock.Get().Now

		if acc.Value.since.IsZero() {
			acc.Value.since = now
			return
		}

		acc.Value.frames += 1

		elapsed := now.Sub(acc.Value.since)
		if elapsed < interval {
			return
		}

		fps.Set(FPS{Value: float64(acc.Value.frames) / elapsed.Seconds()})
		log.Debug("Frame rate", zap.Float64("fps", fps.Get().Value))

		acc.Value = fpsAccumulator{since: now}
	}
}
