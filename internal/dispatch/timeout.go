package dispatch

import (
	"sync"
	"time"
)

// TimeoutScheduler arms one-shot timers per mission offer. Cancel is
// idempotent; a timer that fires after the offer resolved is harmless
// because the handler re-checks mission state under the lock.
type TimeoutScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(missionID string)
}

func NewTimeoutScheduler(fire func(missionID string)) *TimeoutScheduler {
	return &TimeoutScheduler{
		timers: make(map[string]*time.Timer),
		fire:   fire,
	}
}

// Arm schedules the timeout handler for the mission, replacing any timer
// still armed from a previous offer round.
func (s *TimeoutScheduler) Arm(missionID string, d time.Duration) {
	s.mu.Lock()
	if t, ok := s.timers[missionID]; ok {
		t.Stop()
	}
	s.timers[missionID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, missionID)
		s.mu.Unlock()
		s.fire(missionID)
	})
	s.mu.Unlock()
}

// Cancel stops the mission's timer if one is armed. Cancelling an
// already-fired or unknown timer is a no-op.
func (s *TimeoutScheduler) Cancel(missionID string) {
	s.mu.Lock()
	if t, ok := s.timers[missionID]; ok {
		t.Stop()
		delete(s.timers, missionID)
	}
	s.mu.Unlock()
}

// Armed reports whether a timer is currently scheduled for the mission.
func (s *TimeoutScheduler) Armed(missionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[missionID]
	return ok
}
