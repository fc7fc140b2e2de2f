package publication

import (
	"errors"
	"sync"
	"time"
)

// MinPeriod is the smallest supported publication period.
// Periods below this granularity are rejected.
const MinPeriod = 1 * time.Second

// Scheduler errors.
var (
	ErrPeriodTooShort = errors.New("publication period below supported granularity")
)

// Scheduler drives periodic publication for one model.
// The zero value is an idle scheduler ready for Start.
type Scheduler struct {
	mu sync.Mutex

	period    time.Duration
	fn        func()
	timer     *time.Timer
	busy      bool
	cancelled bool
}

// NewScheduler creates an idle scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start schedules fn to run every period.
//
// Calling Start while a fire is in progress is a no-op, preventing a
// duplicate overlapping schedule. Calling Start while idle replaces any
// outstanding timer, so repeated Start calls leave exactly one timer armed.
func (s *Scheduler) Start(period time.Duration, fn func()) error {
	if period < MinPeriod {
		return ErrPeriodTooShort
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	s.period = period
	s.fn = fn
	s.cancelled = false
	s.timer = time.AfterFunc(period, s.fire)
	return nil
}

// Cancel stops any outstanding scheduled fire. Safe to call when idle.
// A fire already executing completes its callback but does not reschedule.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.cancelled = true
}

// Active reports whether a fire is outstanding or in progress.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy || (s.timer != nil && !s.cancelled)
}

// Period returns the currently configured period.
func (s *Scheduler) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// fire runs one publication and arms the next one-shot.
// The busy flag is held across both, serializing consecutive fires.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.busy = true
	fn := s.fn
	period := s.period
	s.mu.Unlock()

	if fn != nil {
		fn()
	}

	s.mu.Lock()
	if s.cancelled {
		s.timer = nil
	} else {
		s.timer = time.AfterFunc(period, s.fire)
	}
	s.busy = false
	s.mu.Unlock()
}
