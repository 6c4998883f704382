// scheduler.go provides named, independently cancellable scheduled tasks.
package interview

import (
	"sync"
	"time"
)

// Task names used by the controller. Scheduling under an existing name
// supersedes the pending task, so e.g. every autosave reschedule cancels
// the previous one.
const (
	taskTick        = "tick"
	taskAutoSubmit  = "auto-submit"
	taskAutoAdvance = "auto-advance"
	taskAutosave    = "autosave"
	taskResume      = "resume"
	taskRedirect    = "redirect"
)

// Scheduler owns a set of named one-shot timers. Unlike raw time.AfterFunc
// closures, tasks can be cancelled individually by name or all at once on
// teardown, and no callback fires after Shutdown.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{timers: make(map[string]*time.Timer)}
}

// Schedule runs fn after delay under the given name. A pending task with
// the same name is cancelled first. Scheduling on a shut-down scheduler is
// a no-op.
func (s *Scheduler) Schedule(name string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}

	s.timers[name] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		delete(s.timers, name)
		s.mu.Unlock()

		fn()
	})
}

// Cancel stops the pending task with the given name, if any.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}

// Pending reports whether a task with the given name is scheduled.
func (s *Scheduler) Pending(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[name]
	return ok
}

// Shutdown cancels every pending task. No callback runs after Shutdown
// returns (callbacks already firing observe the closed flag and bail).
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for name, t := range s.timers {
		t.Stop()
		delete(s.timers, name)
	}
}
