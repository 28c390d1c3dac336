package prom

import "time"

type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
		t.MovingAverage = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
		t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	}

	t.Count += 1

	return t
}

// TimingStats is an optional resource. While it is present, the scheduler
// records how long each phase and each system takes.
type TimingStats struct {
	ByPhase    map[Phase]Timings
	PhaseOrder []Phase

	BySystem map[string]Timings
}

func NewTimingStats() TimingStats {
	return TimingStats{
		ByPhase:  map[Phase]Timings{},
		BySystem: map[string]Timings{},
	}
}

func (t *TimingStats) MeasurePhase(phase Phase) TimingStopwatch {
	startTime := time.Now()

	if t.ByPhase == nil {
		*t = NewTimingStats()
	}

	if _, ok := t.ByPhase[phase]; !ok {
		t.PhaseOrder = append(t.PhaseOrder, phase)
	}

	return TimingStopwatch{
		Stop: func() {
			duration := time.Since(startTime)
			t.ByPhase[phase] = t.ByPhase[phase].Add(duration)
		},
	}
}

func (t *TimingStats) MeasureSystem(system *System) TimingStopwatch {
	startTime := time.Now()

	if t.BySystem == nil {
		t.BySystem = map[string]Timings{}
	}

	return TimingStopwatch{
		Stop: func() {
			duration := time.Since(startTime)
			t.BySystem[system.Name] = t.BySystem[system.Name].Add(duration)
		},
	}
}

type TimingStopwatch struct {
	Stop func()
}
