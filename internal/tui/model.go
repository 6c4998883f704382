// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drill-dev/drill/internal/interview"
)

// ViewState represents the current state of the TUI.
type ViewState int

const (
	StateLoading ViewState = iota
	StateInterview
	StateCompleted
	StateFailed
)

// Model is the main TUI model for one interview session.
type Model struct {
	ctrl  *interview.Controller
	state ViewState

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	submitting bool
	loadErr    error
	escPending bool

	width  int
	height int
}

// NewModel creates the session TUI around an existing controller.
func NewModel(ctrl *interview.Controller) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your answer... (Enter to submit, Shift+Enter for a new line)"
	ta.CharLimit = 5000
	ta.SetHeight(4)
	ta.ShowLineNumbers = false
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(primaryColor))

	vp := viewport.New(80, 20)

	return &Model{
		ctrl:     ctrl,
		state:    StateLoading,
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		width:    80,
		height:   24,
	}
}

// Init starts the loader and the controller event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		LoadSessionCmd(m.ctrl),
		ListenCmd(m.ctrl.Events()),
		m.spinner.Tick,
		textarea.Blink,
	)
}

// Update handles messages and updates the application state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTranscript()
		return m, nil

	case EscResetMsg:
		m.escPending = false
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case SessionLoadedMsg:
		m.state = StateInterview
		m.syncDraft()
		m.refreshTranscript()
		return m, nil

	case SessionLoadFailedMsg:
		m.loadErr = msg.Err
		if msg.NotFound {
			m.state = StateFailed
		}
		// Transient failures keep the interview view: the transcript
		// carries the error banner and the user may reload with ctrl+r.
		m.refreshTranscript()
		return m, nil

	case SubmitDoneMsg:
		m.submitting = false
		m.syncStaged()
		m.refreshTranscript()
		return m, nil

	case FinishDoneMsg:
		m.submitting = false
		m.refreshTranscript()
		return m, nil

	case ControllerEventMsg:
		cmds = append(cmds, ListenCmd(m.ctrl.Events()))
		switch msg.Event.Kind {
		case interview.EventCompleted:
			m.state = StateCompleted
			m.textarea.Blur()
		case interview.EventRedirect:
			return m, tea.Quit
		case interview.EventQuestion:
			m.syncDraft()
		}
		m.refreshTranscript()
		return m, tea.Batch(cmds...)

	case EventsClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if m.state == StateLoading || m.submitting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	// Forward everything else to the textarea and viewport.
	if m.state == StateInterview && !m.submitting {
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.ctrl.StageAnswer(m.textarea.Value())
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes control keys. Returns handled=false for keys the
// focused components should see.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case KeyCtrlC:
		return tea.Quit, true

	case KeyEsc:
		if m.ctrl.InConversation() {
			m.ctrl.ExitConversation()
			m.refreshTranscript()
			return nil, true
		}
		if m.escPending {
			return tea.Quit, true
		}
		m.escPending = true
		return tea.Tick(time.Second, func(time.Time) tea.Msg {
			return EscResetMsg{}
		}), true

	case KeyEnter:
		if m.state != StateInterview || m.submitting {
			return nil, true
		}
		if m.textarea.Value() == "" {
			return nil, true
		}
		m.submitting = true
		m.ctrl.StageAnswer(m.textarea.Value())
		m.textarea.Reset()
		return SubmitCmd(m.ctrl), true

	case "shift+enter", KeyCtrlJ:
		m.textarea.InsertString("\n")
		return nil, true

	case "ctrl+n":
		if m.state == StateInterview && !m.submitting {
			m.ctrl.NextQuestion()
			m.syncDraft()
			m.refreshTranscript()
		}
		return nil, true

	case "ctrl+f":
		if m.state == StateInterview && !m.ctrl.InConversation() {
			if q, ok := m.ctrl.CurrentQuestion(); ok {
				// Best-effort: fails quietly when there is no scored
				// answer to discuss yet.
				_ = m.ctrl.EnterConversation(q.ID)
				m.refreshTranscript()
			}
		}
		return nil, true

	case "ctrl+p":
		switch m.ctrl.SessionState().Status {
		case interview.StatusActive:
			m.ctrl.Pause()
		case interview.StatusPaused:
			m.ctrl.Resume()
		}
		return nil, true

	case "ctrl+r":
		if m.state != StateCompleted {
			m.state = StateLoading
			return LoadSessionCmd(m.ctrl), true
		}
		return nil, true

	case "ctrl+d":
		if m.state == StateInterview && !m.submitting {
			m.submitting = true
			return FinishCmd(m.ctrl), true
		}
		return nil, true
	}

	return nil, false
}

// resize recomputes component dimensions from the window size.
func (m *Model) resize() {
	w := m.width - 6
	if w < 20 {
		w = 20
	}
	h := m.height - 12
	if h < 5 {
		h = 5
	}
	m.viewport.Width = w
	m.viewport.Height = h
	m.textarea.SetWidth(w)
}

// refreshTranscript re-renders the transcript into the viewport and
// scrolls to the bottom.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(formatTranscript(m.ctrl.Transcript(), m.viewport.Width))
	m.viewport.GotoBottom()
}

// syncDraft replaces the textarea contents with the staged draft for the
// newly active question.
func (m *Model) syncDraft() {
	m.textarea.Reset()
	if draft := m.ctrl.StagedAnswer(); draft != "" {
		m.textarea.SetValue(draft)
	}
}

// syncStaged keeps the textarea in step with the controller after a
// submission: on failure the staged text is preserved for retry, on
// success it is cleared.
func (m *Model) syncStaged() {
	if staged := m.ctrl.StagedAnswer(); staged != m.textarea.Value() {
		m.textarea.SetValue(staged)
	}
}
