// commands.go provides Bubble Tea commands wrapping controller calls.
// Every network round-trip happens inside a command, never inside Update.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drill-dev/drill/internal/interview"
)

// LoadSessionCmd runs the session loader. The controller applies its own
// failure policy (system messages, redirect scheduling); the message only
// tells the UI which state to enter.
func LoadSessionCmd(ctrl *interview.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Load(context.Background()); err != nil {
			return SessionLoadFailedMsg{Err: err, NotFound: interview.IsNotFound(err)}
		}
		return SessionLoadedMsg{}
	}
}

// SubmitCmd submits the staged answer (or routes to the conversation
// endpoint while in follow-up mode). Rejected reentrant submits surface
// as no-ops: the controller already guards them.
func SubmitCmd(ctrl *interview.Controller) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Submit(context.Background())
		if errors.Is(err, interview.ErrSubmitInFlight) || errors.Is(err, interview.ErrEmptyAnswer) {
			err = nil
		}
		return SubmitDoneMsg{Err: err}
	}
}

// FinishCmd explicitly finishes the session.
func FinishCmd(ctrl *interview.Controller) tea.Cmd {
	return func() tea.Msg {
		return FinishDoneMsg{Err: ctrl.Finish(context.Background())}
	}
}

// ListenCmd waits for the next controller event. The model re-issues it
// after each received event, mirroring the channel-pump pattern used for
// streaming output.
func ListenCmd(events <-chan interview.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return EventsClosedMsg{}
		}
		return ControllerEventMsg{Event: ev}
	}
}
