// view.go renders the interview screen.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/drill-dev/drill/internal/interview"
)

// View renders the TUI.
func (m *Model) View() string {
	switch m.state {
	case StateLoading:
		return BoxStyle.Render(fmt.Sprintf("%s Loading session…", m.spinner.View()))
	case StateFailed:
		msg := "Session expired or not found."
		if m.loadErr != nil {
			msg = m.loadErr.Error()
		}
		return BoxStyle.Render(ErrorStyle.Render(msg))
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")

	if m.state == StateCompleted {
		b.WriteString(SuccessStyle.Render("Interview completed."))
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("Esc twice to exit"))
	} else {
		if m.submitting {
			b.WriteString(fmt.Sprintf("%s Evaluating…", m.spinner.View()))
			b.WriteString("\n\n")
		}
		b.WriteString(m.textarea.View())
		b.WriteString("\n")
		b.WriteString(m.footerView())
	}

	boxWidth := m.width - 2
	if boxWidth < 30 {
		boxWidth = 30
	}
	return BoxStyle.Width(boxWidth).Render(b.String())
}

// headerView renders the status line: progress, timer, and mode.
func (m *Model) headerView() string {
	sess := m.ctrl.SessionState()

	title := TitleStyle.Render("Mock Interview")
	progress := DimStyle.Render(fmt.Sprintf("question %d/%d", sess.Progress.Current+1, sess.Progress.Total))

	var timer string
	remaining := m.ctrl.TimeRemaining()
	switch m.ctrl.TimerState() {
	case interview.TimerExpired:
		timer = ErrorStyle.Render("time expired")
	case interview.TimerPaused:
		timer = WarningStyle.Render(fmt.Sprintf("paused · %s left", formatDuration(remaining)))
	case interview.TimerRunning:
		style := SuccessStyle
		if remaining <= time.Minute {
			style = ErrorStyle
		} else if remaining <= 3*time.Minute {
			style = WarningStyle
		}
		timer = style.Render(formatDuration(remaining))
	default:
		timer = DimStyle.Render("--:--")
	}

	parts := []string{title, progress, timer}
	if m.ctrl.InConversation() {
		parts = append(parts, WarningStyle.Render("follow-up mode"))
	}
	if sess.Status == interview.StatusPaused {
		parts = append(parts, WarningStyle.Render("PAUSED"))
	}
	return strings.Join(parts, DimStyle.Render("  ·  "))
}

// footerView renders key hints, with the Esc hint reflecting pending state.
func (m *Model) footerView() string {
	hints := "Enter: submit · Ctrl+F: follow-up · Ctrl+N: next · Ctrl+P: pause · Ctrl+R: reload · Ctrl+D: finish"
	if m.ctrl.InConversation() {
		hints = "Enter: ask · Esc: leave follow-up mode"
	}

	esc := DimStyle.Render("Esc: quit")
	if m.escPending {
		esc = WarningStyle.Render("Press Esc again to quit")
	}
	return DimStyle.Render(hints) + DimStyle.Render(" · ") + esc
}

// formatTranscript renders the message log for the viewport.
func formatTranscript(messages []interview.Message, width int) string {
	if len(messages) == 0 {
		return DimStyle.Render("Waiting for the first question…")
	}

	var b strings.Builder
	for i, msg := range messages {
		switch msg.Type {
		case interview.MessageQuestion:
			b.WriteString(TitleStyle.Render("Interviewer: "))
			b.WriteString(QuestionStyle.Render(msg.Text))
		case interview.MessageAnswer:
			b.WriteString(AnswerStyle.Render("You: "))
			b.WriteString(msg.Text)
			if msg.Feedback != nil {
				b.WriteString("\n")
				b.WriteString(formatFeedback(msg.Feedback))
			}
		case interview.MessageUser:
			b.WriteString(AnswerStyle.Render("You (follow-up): "))
			b.WriteString(msg.Text)
		default:
			if msg.Error {
				b.WriteString(ErrorStyle.Render("! "))
				b.WriteString(ErrorStyle.Render(msg.Text))
			} else {
				b.WriteString(DimStyle.Render(msg.Text))
			}
		}

		if i < len(messages)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// formatFeedback renders an evaluation under its answer.
func formatFeedback(fb *interview.Feedback) string {
	var b strings.Builder

	if !fb.Conversational {
		score := fmt.Sprintf("Score: %.1f/10", fb.OverallScore)
		switch {
		case fb.OverallScore >= 8:
			b.WriteString(SuccessStyle.Render(score))
		case fb.OverallScore >= 6:
			b.WriteString(WarningStyle.Render(score))
		default:
			b.WriteString(ErrorStyle.Render(score))
		}
		b.WriteString("\n")
	}

	if fb.Message != "" {
		b.WriteString("  ")
		b.WriteString(fb.Message)
	}
	for _, s := range fb.Suggestions {
		b.WriteString("\n  ")
		b.WriteString(DimStyle.Render("→ " + s))
	}
	return b.String()
}

// formatDuration renders a countdown as mm:ss.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
