package interview

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSchedulerRunsTask(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var ran atomic.Bool
	s.Schedule("task", time.Millisecond, func() { ran.Store(true) })
	waitFor(t, ran.Load, "scheduled task never ran")

	if s.Pending("task") {
		t.Error("task still pending after running")
	}
}

func TestSchedulerSameNameSupersedes(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var got atomic.Int32
	s.Schedule("task", 50*time.Millisecond, func() { got.Store(1) })
	s.Schedule("task", time.Millisecond, func() { got.Store(2) })

	waitFor(t, func() bool { return got.Load() != 0 }, "task never ran")
	time.Sleep(80 * time.Millisecond)
	if got.Load() != 2 {
		t.Errorf("got = %d, want 2 (the superseding task only)", got.Load())
	}
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var ran atomic.Bool
	s.Schedule("task", 20*time.Millisecond, func() { ran.Store(true) })
	if !s.Pending("task") {
		t.Fatal("task not pending after Schedule")
	}
	s.Cancel("task")
	if s.Pending("task") {
		t.Error("task still pending after Cancel")
	}

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("cancelled task ran anyway")
	}
}

func TestSchedulerIndependentNames(t *testing.T) {
	s := NewScheduler()
	defer s.Shutdown()

	var a, b atomic.Bool
	s.Schedule("a", time.Millisecond, func() { a.Store(true) })
	s.Schedule("b", time.Millisecond, func() { b.Store(true) })

	waitFor(t, func() bool { return a.Load() && b.Load() }, "independent tasks did not both run")
}

func TestSchedulerShutdown(t *testing.T) {
	s := NewScheduler()

	var ran atomic.Bool
	s.Schedule("task", 20*time.Millisecond, func() { ran.Store(true) })
	s.Shutdown()

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Error("task ran after Shutdown")
	}

	// Scheduling after shutdown is a no-op.
	s.Schedule("late", time.Millisecond, func() { ran.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if ran.Load() {
		t.Error("task scheduled after Shutdown ran")
	}
}
