// Package tui implements the terminal user interface using Bubble Tea.
package tui

import "github.com/drill-dev/drill/internal/interview"

// ============================================================================
// Session Messages
// ============================================================================

// SessionLoadedMsg signals that the session loader finished successfully.
type SessionLoadedMsg struct{}

// SessionLoadFailedMsg signals that loading failed. NotFound carries the
// not-found policy: the UI shows the terminal banner and redirects.
type SessionLoadFailedMsg struct {
	Err      error
	NotFound bool
}

// RedirectHomeMsg asks the UI to leave the session (after the not-found
// delay has elapsed).
type RedirectHomeMsg struct{}

// ============================================================================
// Submission Messages
// ============================================================================

// SubmitDoneMsg signals that an answer submission finished (the
// transcript already reflects the outcome either way). While in
// follow-up mode the same message covers conversation exchanges.
type SubmitDoneMsg struct {
	Err error
}

// FinishDoneMsg signals that the explicit finish call returned.
type FinishDoneMsg struct {
	Err error
}

// ============================================================================
// Controller Event Messages
// ============================================================================

// ControllerEventMsg wraps one event from the controller's event channel
// (timer ticks, scheduled advances, completion).
type ControllerEventMsg struct {
	Event interview.Event
}

// EventsClosedMsg signals that the controller's event channel closed
// (controller torn down).
type EventsClosedMsg struct{}

// ============================================================================
// Utility Messages
// ============================================================================

// EscResetMsg resets the Esc pending state after timeout.
type EscResetMsg struct{}
