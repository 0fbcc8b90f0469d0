// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package polling

import (
	"sync"
	"time"

	"github.com/ManuGH/cloudportal/internal/metrics"
)

// Key identifies a pending timer. Scheduling a key that is already pending
// replaces the earlier timer.
type Key struct {
	Rule      string
	TenancyID string
	ItemID    string
}

type timer struct {
	t *time.Timer
}

// Scheduler runs delayed callbacks with latest-wins semantics per key.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[Key]*timer
	stopped bool
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[Key]*timer)}
}

// Schedule runs fn after d unless key is rescheduled or cancelled first. It
// reports false once the scheduler has been stopped.
func (s *Scheduler) Schedule(key Key, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if prev, ok := s.timers[key]; ok {
		prev.t.Stop()
	}
	tm := &timer{}
	tm.t = time.AfterFunc(d, func() { s.fire(key, tm, fn) })
	s.timers[key] = tm
	metrics.TimersPending.Set(float64(len(s.timers)))
	return true
}

func (s *Scheduler) fire(key Key, tm *timer, fn func()) {
	s.mu.Lock()
	if s.stopped || s.timers[key] != tm {
		s.mu.Unlock()
		return
	}
	delete(s.timers, key)
	metrics.TimersPending.Set(float64(len(s.timers)))
	s.mu.Unlock()

	metrics.IncTimerFired(key.Rule)
	fn()
}

// Cancel stops the timer for key and reports whether one was pending.
func (s *Scheduler) Cancel(key Key) bool {
	return s.CancelWhere(func(k Key) bool { return k == key }) > 0
}

// CancelWhere stops every pending timer whose key matches and returns how
// many were stopped.
func (s *Scheduler) CancelWhere(match func(Key) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, tm := range s.timers {
		if match(k) {
			tm.t.Stop()
			delete(s.timers, k)
			n++
		}
	}
	metrics.TimersPending.Set(float64(len(s.timers)))
	return n
}

// Pending returns the keys of the timers that have not fired yet.
func (s *Scheduler) Pending() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]Key, 0, len(s.timers))
	for k := range s.timers {
		keys = append(keys, k)
	}
	return keys
}

// Stop cancels every timer and rejects further scheduling.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for k, tm := range s.timers {
		tm.t.Stop()
		delete(s.timers, k)
	}
	metrics.TimersPending.Set(0)
}
