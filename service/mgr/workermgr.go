package mgr

import (
	"sync"
	"time"
)

// WorkerMgr schedules a worker as a one-shot deferred task.
// Arming the task again before it fired replaces the pending execution,
// which makes the WorkerMgr suitable for trailing-edge debouncing.
type WorkerMgr struct {
	mgr *Manager

	// Definition.
	name string
	fn   func(w *WorkerCtx) error

	lock  sync.Mutex
	timer *time.Timer
}

// NewWorkerMgr creates a new scheduler for the given worker function.
// Execution is deferred until Delay() or Go() is called.
// Errors and panics are logged.
func (m *Manager) NewWorkerMgr(name string, fn func(w *WorkerCtx) error) *WorkerMgr {
	return &WorkerMgr{
		mgr:  m,
		name: name,
		fn:   fn,
	}
}

// Delay starts the given function delayed in a goroutine (as a "worker").
// It is a shorthand for NewWorkerMgr(...).Delay(...).
func (m *Manager) Delay(name string, duration time.Duration, fn func(w *WorkerCtx) error) *WorkerMgr {
	return m.NewWorkerMgr(name, fn).Delay(duration)
}

// Delay will schedule the worker to run after the given duration.
// A pending execution is replaced, the timer starts anew.
func (s *WorkerMgr) Delay(duration time.Duration) *WorkerMgr {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(duration, s.execute)
	return s
}

// Go executes the worker immediately.
// A pending delayed execution is canceled.
func (s *WorkerMgr) Go() {
	s.lock.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.lock.Unlock()

	go s.execute()
}

// Stop cancels a pending execution.
func (s *WorkerMgr) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *WorkerMgr) execute() {
	s.lock.Lock()
	s.timer = nil
	s.lock.Unlock()

	// Do not start new work when the manager is shutting down.
	if s.mgr.IsDone() {
		return
	}

	_ = s.mgr.Do(s.name, s.fn)
}
