package runner

import "time"

// Clock returns the current time. Tests substitute a deterministic one.
type Clock func() time.Time

// stopwatch measures one interval at a time. Each run creates its own.
type stopwatch struct {
	now   Clock
	start time.Time
}

func newStopwatch(now Clock) *stopwatch {
	if now == nil {
		now = time.Now
	}
	return &stopwatch{now: now}
}

func (s *stopwatch) Start() {
	s.start = s.now()
}

func (s *stopwatch) Stop() time.Duration {
	return s.now().Sub(s.start)
}
