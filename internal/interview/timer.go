// timer.go implements the per-question countdown state machine.
package interview

import "time"

// TimerState is the state of the countdown.
type TimerState int

const (
	TimerIdle TimerState = iota
	TimerRunning
	TimerPaused
	TimerExpired
)

// String returns a display label for the timer state.
func (s TimerState) String() string {
	switch s {
	case TimerRunning:
		return "running"
	case TimerPaused:
		return "paused"
	case TimerExpired:
		return "expired"
	default:
		return "idle"
	}
}

// Countdown tracks elapsed and remaining time for one question. It is a
// pure state machine: the owner drives it with Tick once per time unit,
// so tests need no real clock. Expiry is terminal for the question; the
// controller arms a fresh Countdown for the next one.
type Countdown struct {
	state     TimerState
	duration  time.Duration
	remaining time.Duration
	unit      time.Duration
}

// NewCountdown creates an idle countdown ticking in the given unit
// (one second in production).
func NewCountdown(unit time.Duration) *Countdown {
	if unit <= 0 {
		unit = time.Second
	}
	return &Countdown{state: TimerIdle, unit: unit}
}

// Start arms the countdown with the full duration and moves it to
// running. Allowed from idle, paused, or expired (re-arm for the next
// question); a running countdown restarts.
func (c *Countdown) Start(d time.Duration) {
	c.duration = d
	c.remaining = d
	c.state = TimerRunning
}

// Pause freezes the remaining time. Only a running countdown pauses.
func (c *Countdown) Pause() {
	if c.state == TimerRunning {
		c.state = TimerPaused
	}
}

// Resume continues a paused countdown.
func (c *Countdown) Resume() {
	if c.state == TimerPaused {
		c.state = TimerRunning
	}
}

// Stop returns the countdown to idle without firing expiry.
func (c *Countdown) Stop() {
	c.state = TimerIdle
	c.remaining = 0
}

// Tick advances a running countdown by one unit. It returns true exactly
// once: on the transition from running to expired. Ticks in any other
// state are ignored, so a stale tick callback cannot re-fire expiry.
func (c *Countdown) Tick() bool {
	if c.state != TimerRunning {
		return false
	}

	c.remaining -= c.unit
	if c.remaining > 0 {
		return false
	}

	c.remaining = 0
	c.state = TimerExpired
	return true
}

// State returns the current timer state.
func (c *Countdown) State() TimerState { return c.state }

// Remaining returns the time left on the countdown.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Elapsed returns how much of the armed duration has been consumed.
func (c *Countdown) Elapsed() time.Duration { return c.duration - c.remaining }
