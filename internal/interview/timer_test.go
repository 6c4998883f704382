package interview

import (
	"testing"
	"time"
)

func TestCountdownStartAndTick(t *testing.T) {
	c := NewCountdown(time.Second)
	if c.State() != TimerIdle {
		t.Fatalf("initial state = %s, want idle", c.State())
	}

	c.Start(3 * time.Second)
	if c.State() != TimerRunning {
		t.Fatalf("state after Start = %s, want running", c.State())
	}
	if c.Remaining() != 3*time.Second {
		t.Errorf("Remaining = %s, want 3s", c.Remaining())
	}

	if c.Tick() {
		t.Error("Tick fired with 2s remaining")
	}
	if c.Elapsed() != time.Second {
		t.Errorf("Elapsed = %s, want 1s", c.Elapsed())
	}
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	c := NewCountdown(time.Second)
	c.Start(time.Second)

	if !c.Tick() {
		t.Fatal("Tick did not fire on the running -> expired transition")
	}
	if c.State() != TimerExpired {
		t.Fatalf("state = %s, want expired", c.State())
	}
	// A stale tick after expiry never re-fires.
	if c.Tick() {
		t.Error("Tick fired a second time after expiry")
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining = %s after expiry, want 0", c.Remaining())
	}
}

func TestCountdownPauseResume(t *testing.T) {
	c := NewCountdown(time.Second)
	c.Start(5 * time.Second)
	c.Tick()

	c.Pause()
	if c.State() != TimerPaused {
		t.Fatalf("state = %s, want paused", c.State())
	}
	// Ticks while paused are ignored.
	if c.Tick() {
		t.Error("Tick fired while paused")
	}
	if c.Remaining() != 4*time.Second {
		t.Errorf("Remaining changed while paused: %s", c.Remaining())
	}

	c.Resume()
	if c.State() != TimerRunning {
		t.Fatalf("state after Resume = %s, want running", c.State())
	}
	c.Tick()
	if c.Remaining() != 3*time.Second {
		t.Errorf("Remaining = %s after resume+tick, want 3s", c.Remaining())
	}
}

func TestCountdownPauseOnlyWhenRunning(t *testing.T) {
	c := NewCountdown(time.Second)
	c.Pause()
	if c.State() != TimerIdle {
		t.Errorf("Pause from idle moved state to %s", c.State())
	}
	c.Resume()
	if c.State() != TimerIdle {
		t.Errorf("Resume from idle moved state to %s", c.State())
	}
}

func TestCountdownStop(t *testing.T) {
	c := NewCountdown(time.Second)
	c.Start(5 * time.Second)
	c.Stop()
	if c.State() != TimerIdle {
		t.Fatalf("state after Stop = %s, want idle", c.State())
	}
	if c.Tick() {
		t.Error("Tick fired after Stop")
	}
}

func TestCountdownRearmAfterExpiry(t *testing.T) {
	c := NewCountdown(time.Second)
	c.Start(time.Second)
	c.Tick()

	c.Start(2 * time.Second)
	if c.State() != TimerRunning {
		t.Fatalf("state after re-arm = %s, want running", c.State())
	}
	if c.Tick() {
		t.Error("Tick fired immediately after re-arm with 2s duration")
	}
	if !c.Tick() {
		t.Error("re-armed countdown did not expire on schedule")
	}
}

func TestCountdownDefaultUnit(t *testing.T) {
	c := NewCountdown(0)
	c.Start(2 * time.Second)
	c.Tick()
	if c.Remaining() != time.Second {
		t.Errorf("Remaining = %s with default unit, want 1s", c.Remaining())
	}
}
