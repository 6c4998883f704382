// controller.go implements the interview session controller: the single
// owner of the message log, session state, countdown, and submission
// pipeline for one active session.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/drill-dev/drill/internal/log"
)

// Sentinel errors returned by controller operations.
var (
	ErrEmptyAnswer       = errors.New("answer is empty")
	ErrSubmitInFlight    = errors.New("a submission is already in flight")
	ErrSessionCompleted  = errors.New("session is completed")
	ErrNoQuestion        = errors.New("no current question")
	ErrNotLoaded         = errors.New("session not loaded")
	ErrNotInConversation = errors.New("not in conversation mode")
)

// sentinelAnswer is submitted when the countdown expires with nothing
// staged, so the turn is recorded instead of silently dropped.
const sentinelAnswer = "(time expired — no answer submitted)"

// Options configures controller timing and score thresholds. Zero values
// are replaced by defaults matching DefaultOptions.
type Options struct {
	QuestionDuration time.Duration // countdown per question
	TimerUnit        time.Duration // one tick
	AutoAdvanceDelay time.Duration // after a high score
	AutosaveDebounce time.Duration // after the last edit
	ResumeDelay      time.Duration // after leaving conversation mode
	RedirectDelay    time.Duration // after a not-found failure
	AdvanceScore     float64       // >= auto-advances
	FollowupScore    float64       // < gets the stronger hint
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		QuestionDuration: 600 * time.Second,
		TimerUnit:        time.Second,
		AutoAdvanceDelay: 3 * time.Second,
		AutosaveDebounce: 2 * time.Second,
		ResumeDelay:      1500 * time.Millisecond,
		RedirectDelay:    3 * time.Second,
		AdvanceScore:     8.0,
		FollowupScore:    6.0,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.QuestionDuration <= 0 {
		o.QuestionDuration = d.QuestionDuration
	}
	if o.TimerUnit <= 0 {
		o.TimerUnit = d.TimerUnit
	}
	if o.AutoAdvanceDelay <= 0 {
		o.AutoAdvanceDelay = d.AutoAdvanceDelay
	}
	if o.AutosaveDebounce <= 0 {
		o.AutosaveDebounce = d.AutosaveDebounce
	}
	if o.ResumeDelay <= 0 {
		o.ResumeDelay = d.ResumeDelay
	}
	if o.RedirectDelay <= 0 {
		o.RedirectDelay = d.RedirectDelay
	}
	if o.AdvanceScore <= 0 {
		o.AdvanceScore = d.AdvanceScore
	}
	if o.FollowupScore <= 0 {
		o.FollowupScore = d.FollowupScore
	}
	return o
}

// EventKind tags a controller event.
type EventKind int

const (
	// EventTranscript signals that the message log changed.
	EventTranscript EventKind = iota
	// EventTimer signals a countdown tick or state change.
	EventTimer
	// EventQuestion signals that the current question changed.
	EventQuestion
	// EventCompleted signals that the session reached its terminal state.
	EventCompleted
	// EventRedirect asks the UI to leave the session (not-found policy).
	EventRedirect
	// EventConversation signals entering or leaving conversation mode.
	EventConversation
)

// Event is a notification pushed to the UI when controller state changes
// outside a direct method call (scheduled tasks, push channel).
type Event struct {
	Kind EventKind
}

// Controller owns all mutable state for one active interview session.
// All access is serialized by one mutex: the Go analogue of the single
// event loop the flow was designed for. Reentrancy-sensitive operations
// (submission) use an explicit in-flight flag checked before any
// suspension point.
type Controller struct {
	mu sync.Mutex

	opts    Options
	backend Backend
	drafts  DraftStore
	events  *log.Logger

	transcript *MessageLog
	session    Session
	questions  []Question
	current    int
	loaded     bool

	staged     string
	submitting bool
	conv       *ConversationContext

	timer *Countdown
	sched *Scheduler

	evch   chan Event
	closed bool
}

// NewController creates a controller for the given session backend.
// drafts and events may be nil; the corresponding features are disabled.
func NewController(backend Backend, drafts DraftStore, events *log.Logger, sessionID string, opts Options) *Controller {
	opts = opts.withDefaults()
	return &Controller{
		opts:       opts,
		backend:    backend,
		drafts:     drafts,
		events:     events,
		transcript: NewMessageLog(),
		session:    Session{ID: sessionID, Status: StatusPreparing},
		timer:      NewCountdown(opts.TimerUnit),
		sched:      NewScheduler(),
		evch:       make(chan Event, 64),
	}
}

// Events returns the channel of controller notifications. The channel is
// buffered; events are dropped rather than blocking controller progress
// when the consumer falls behind (every event is a cheap re-render hint).
func (c *Controller) Events() <-chan Event { return c.evch }

func (c *Controller) emit(kind EventKind) {
	select {
	case c.evch <- Event{Kind: kind}:
	default:
	}
}

func (c *Controller) record(event string, fields log.Event) {
	if c.events == nil {
		return
	}
	fields.Event = event
	fields.SessionID = c.session.ID
	_ = c.events.Append(fields)
}

// Close tears the controller down: the countdown, pending scheduled tasks
// (autosave, auto-advance, resume, redirect), and the event channel all
// stop. No callback mutates state after Close returns.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.timer.Stop()
	c.sched.Shutdown()
	close(c.evch)
}

// ============================================================================
// Loading and resume
// ============================================================================

// Load fetches session metadata, questions, and prior history, replays
// the history into the transcript, and presents the resume question. It
// is idempotent: calling it again replaces committed history while
// keeping locally added system banners.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.New("controller closed")
	}
	id := c.session.ID
	c.mu.Unlock()

	var (
		sess      Session
		questions []Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sess, err = c.backend.Session(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		questions, err = c.backend.Questions(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		c.loadFailed(err)
		return err
	}

	hist, err := c.backend.History(ctx, id)
	if err != nil {
		c.loadFailed(err)
		return err
	}

	questions = DedupQuestions(questions)
	st := replayHistory(questions, hist)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("controller closed")
	}

	c.questions = questions
	c.transcript.ReplaceKeepingSystem(st.messages)
	c.session = sess
	c.session.Progress = Progress{
		Current: st.resume,
		Total:   len(questions),
		Percent: percent(st.answered, len(questions)),
	}
	if c.session.Status == StatusPreparing {
		c.session.Status = StatusActive
	}
	c.current = st.resume
	c.loaded = true

	c.record(log.EventSessionLoaded, log.Event{Total: len(questions), Completed: st.answered})

	if st.answered >= len(questions) && len(questions) > 0 {
		// Every question already has an answer. Completion stays an
		// explicit event; just tell the user where they stand.
		c.appendSystemLocked("All questions answered. Ask follow-ups or finish the session when ready.")
	}

	if c.session.Status == StatusActive {
		c.presentQuestionLocked()
	}
	c.emit(EventTranscript)
	c.emit(EventQuestion)
	return nil
}

// Reload re-runs the loader path. Safe to call repeatedly.
func (c *Controller) Reload(ctx context.Context) error { return c.Load(ctx) }

// loadFailed applies the load failure policy: not-found redirects away
// after a delay, anything else becomes a dismissible system message and
// the user may reload manually. No automatic retry loop.
func (c *Controller) loadFailed(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.record(log.EventLoadFailed, log.Event{Error: err.Error()})

	if IsNotFound(err) {
		c.appendErrorLocked("Session expired or not found.")
		c.sched.Schedule(taskRedirect, c.opts.RedirectDelay, func() {
			c.emit(EventRedirect)
		})
		return
	}
	c.appendErrorLocked(fmt.Sprintf("Failed to load session: %v. Reload to try again.", err))
	c.emit(EventTranscript)
}

// presentQuestionLocked appends the current question's prompt and re-arms
// the countdown. Caller holds c.mu.
func (c *Controller) presentQuestionLocked() {
	q, ok := c.currentQuestionLocked()
	if !ok {
		return
	}

	msg := Message{
		ID:         questionMessageID(q.ID),
		Type:       MessageQuestion,
		Timestamp:  time.Now(),
		QuestionID: q.ID,
		Text:       q.Text,
	}
	c.transcript.Append(msg)
	c.record(log.EventQuestionShown, log.Event{QuestionID: q.ID, Index: c.current})

	c.timer.Start(c.opts.QuestionDuration)
	c.scheduleTickLocked()

	// Restore any saved draft for the newly active question.
	if c.drafts != nil {
		if text, err := c.drafts.Load(c.session.ID, q.ID); err == nil && text != "" {
			c.staged = text
		} else {
			c.staged = ""
		}
	} else {
		c.staged = ""
	}
}

func (c *Controller) currentQuestionLocked() (Question, bool) {
	if c.current < 0 || c.current >= len(c.questions) {
		return Question{}, false
	}
	return c.questions[c.current], true
}

func percent(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// ============================================================================
// Countdown
// ============================================================================

func (c *Controller) scheduleTickLocked() {
	c.sched.Schedule(taskTick, c.opts.TimerUnit, c.onTick)
}

func (c *Controller) onTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	fired := c.timer.Tick()
	c.session.Elapsed += c.opts.TimerUnit
	c.emit(EventTimer)

	if fired {
		q, _ := c.currentQuestionLocked()
		c.record(log.EventTimerExpired, log.Event{QuestionID: q.ID})
		// Auto-submit is scheduled, not run inline, so the tick
		// callback never carries the network round-trip.
		c.sched.Schedule(taskAutoSubmit, 0, func() {
			_ = c.SubmitExpired(context.Background())
		})
		return
	}
	if c.timer.State() == TimerRunning {
		c.scheduleTickLocked()
	}
}

// Pause freezes the countdown and marks the session paused.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Status != StatusActive {
		return
	}
	c.session.Status = StatusPaused
	c.timer.Pause()
	c.sched.Cancel(taskTick)
	c.emit(EventTimer)
}

// Resume continues a paused session.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Status != StatusPaused {
		return
	}
	c.session.Status = StatusActive
	c.resumePresentationLocked()
	c.emit(EventTimer)
}

// resumePresentationLocked restarts the countdown after a pause. A
// session loaded while already paused has never presented its current
// question or armed a timer; present it now instead of resuming a timer
// that was never started. Caller holds c.mu.
func (c *Controller) resumePresentationLocked() {
	if q, ok := c.currentQuestionLocked(); ok {
		if _, seen := c.transcript.Get(questionMessageID(q.ID)); !seen {
			c.presentQuestionLocked()
			c.emit(EventTranscript)
			c.emit(EventQuestion)
			return
		}
	}
	c.timer.Resume()
	if c.timer.State() == TimerRunning {
		c.scheduleTickLocked()
	}
}

// TimerState returns the countdown state.
func (c *Controller) TimerState() TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer.State()
}

// TimeRemaining returns the countdown's remaining time.
func (c *Controller) TimeRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer.Remaining()
}

// ============================================================================
// Staged answer and autosave
// ============================================================================

// StageAnswer records the in-progress answer text and schedules a
// debounced draft save. Every edit reschedules the save, so a burst of
// edits persists once, with the latest text.
func (c *Controller) StageAnswer(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.staged = text
	q, ok := c.currentQuestionLocked()
	if !ok || c.drafts == nil {
		return
	}

	sessionID, questionID := c.session.ID, q.ID
	c.sched.Schedule(taskAutosave, c.opts.AutosaveDebounce, func() {
		_ = c.drafts.Save(sessionID, questionID, text)
	})
}

// StagedAnswer returns the currently staged answer text.
func (c *Controller) StagedAnswer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged
}

// ============================================================================
// Submission pipeline
// ============================================================================

// Submit sends the staged answer for evaluation. While the user is in
// conversation mode the input is redirected to FollowUp instead.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.conv != nil {
		text := c.staged
		c.mu.Unlock()
		// The staged text is cleared only once the follow-up has gone
		// through, so a failed send leaves the input intact for retry.
		if err := c.FollowUp(ctx, text); err != nil {
			return err
		}
		c.mu.Lock()
		if c.staged == text {
			c.staged = ""
		}
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.submit(ctx, c.StagedAnswer(), false)
}

// SubmitExpired submits on countdown expiry, substituting the sentinel
// answer when nothing is staged.
func (c *Controller) SubmitExpired(ctx context.Context) error {
	text := strings.TrimSpace(c.StagedAnswer())
	if text == "" {
		text = sentinelAnswer
	}
	return c.submit(ctx, text, true)
}

func (c *Controller) submit(ctx context.Context, text string, auto bool) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	// All guards are checked and the in-flight flag set before the
	// network suspension point.
	if c.closed {
		c.mu.Unlock()
		return errors.New("controller closed")
	}
	if !c.loaded {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if c.session.Status == StatusCompleted {
		c.mu.Unlock()
		return ErrSessionCompleted
	}
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyAnswer
	}
	if c.submitting {
		// Rejected, not queued: a second submit while one is
		// outstanding never wins.
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	q, ok := c.currentQuestionLocked()
	if !ok {
		// Defensive: the question list and index disagree. Abort this
		// operation only.
		c.appendErrorLocked("No current question; transcript may be out of date. Reload the session.")
		c.mu.Unlock()
		return ErrNoQuestion
	}

	c.submitting = true
	timeTaken := c.timer.Elapsed()
	if !auto {
		c.timer.Pause()
		c.sched.Cancel(taskTick)
	}

	// Optimistic append: the transcript reflects the submission before
	// the round-trip completes.
	msgID := uuid.New().String()
	c.transcript.Append(Message{
		ID:         msgID,
		Type:       MessageAnswer,
		Timestamp:  time.Now(),
		QuestionID: q.ID,
		Text:       text,
	})
	c.emit(EventTranscript)

	req := SubmitRequest{
		SessionID:  c.session.ID,
		QuestionID: q.ID,
		Text:       text,
		TimeTaken:  timeTaken,
	}
	c.mu.Unlock()

	res, err := c.backend.SubmitAnswer(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	// The lock is always released, even on the error paths below, so
	// the UI can never be left permanently disabled.
	defer func() { c.submitting = false }()

	if c.closed {
		return nil
	}

	c.record(log.EventAnswerSubmitted, log.Event{QuestionID: q.ID, Auto: auto})

	if err != nil {
		// The staged text is untouched: the user must not retype.
		c.appendErrorLocked(fmt.Sprintf("Failed to submit answer: %v", err))
		if !auto && c.session.Status == StatusActive {
			// Manual submit paused the countdown; give the time back.
			c.timer.Resume()
			if c.timer.State() == TimerRunning {
				c.scheduleTickLocked()
			}
		}
		c.emit(EventTranscript)
		return err
	}

	c.staged = ""
	c.sched.Cancel(taskAutosave)
	// The question is answered; its countdown no longer applies.
	c.timer.Stop()
	c.sched.Cancel(taskTick)

	if res.Feedback != nil {
		// Merge by message ID, never by position: autosave or timer
		// events may have appended to the log since the optimistic
		// append.
		c.transcript.SetFeedback(msgID, res.Feedback)
		c.record(log.EventFeedbackReceived, log.Event{QuestionID: q.ID, Score: res.Feedback.OverallScore})
	}

	if res.Completed {
		c.completeLocked()
		c.emit(EventTranscript)
		return nil
	}

	c.applyScoreLocked(res.Feedback)
	c.emit(EventTranscript)
	return nil
}

// applyScoreLocked decides the next action from the feedback score.
// Caller holds c.mu.
func (c *Controller) applyScoreLocked(fb *Feedback) {
	if fb == nil {
		return
	}

	switch {
	case fb.OverallScore >= c.opts.AdvanceScore:
		c.appendSystemLocked(fmt.Sprintf("Strong answer (%.1f/10). Moving to the next question shortly…", fb.OverallScore))
		c.sched.Schedule(taskAutoAdvance, c.opts.AutoAdvanceDelay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed || c.session.Status == StatusCompleted {
				return
			}
			c.advanceLocked()
		})
	case fb.OverallScore >= c.opts.FollowupScore:
		c.appendSystemLocked(fmt.Sprintf("Scored %.1f/10. You can ask follow-up questions about this answer, or move to the next question.", fb.OverallScore))
	default:
		c.appendSystemLocked(fmt.Sprintf("Scored %.1f/10. Consider asking follow-up questions to dig into the gaps before moving on.", fb.OverallScore))
	}
}

// advanceLocked moves to the next question, if any. Caller holds c.mu.
func (c *Controller) advanceLocked() {
	// A pending autosave belongs to the question being left behind;
	// cancel it so a stale save cannot land on the new question.
	c.sched.Cancel(taskAutosave)
	c.sched.Cancel(taskAutoAdvance)

	if c.current >= len(c.questions)-1 {
		c.appendSystemLocked("That was the last question. Finish the session when you are ready.")
		c.emit(EventTranscript)
		return
	}

	c.current++
	c.session.Progress.Current = c.current
	c.session.Progress.Percent = percent(c.current, len(c.questions))
	c.record(log.EventAutoAdvanced, log.Event{Index: c.current})

	c.presentQuestionLocked()
	c.emit(EventTranscript)
	c.emit(EventQuestion)
}

// NextQuestion advances manually, outside the auto-advance path.
func (c *Controller) NextQuestion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.session.Status == StatusCompleted {
		return
	}
	c.advanceLocked()
}

// completeLocked applies the terminal transition. Caller holds c.mu.
func (c *Controller) completeLocked() {
	c.session.Status = StatusCompleted
	c.timer.Stop()
	c.sched.Cancel(taskTick)
	c.sched.Cancel(taskAutoAdvance)
	c.sched.Cancel(taskAutosave)
	c.conv = nil
	c.appendSystemLocked("Interview completed. Thanks for practicing!")
	c.record(log.EventSessionCompleted, log.Event{Total: len(c.questions)})
	c.emit(EventCompleted)
}

// Finish explicitly ends the session via the finish endpoint.
func (c *Controller) Finish(ctx context.Context) error {
	c.mu.Lock()
	if c.session.Status == StatusCompleted {
		c.mu.Unlock()
		return ErrSessionCompleted
	}
	id := c.session.ID
	c.mu.Unlock()

	if err := c.backend.Finish(ctx, id); err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.appendErrorLocked(fmt.Sprintf("Failed to finish session: %v", err))
		c.emit(EventTranscript)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeLocked()
	c.emit(EventTranscript)
	return nil
}

// ============================================================================
// Accessors
// ============================================================================

// Transcript returns a copy of the message log.
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Messages()
}

// SessionState returns a snapshot of the session.
func (c *Controller) SessionState() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// CurrentQuestion returns the question at the resume/current index.
func (c *Controller) CurrentQuestion() (Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentQuestionLocked()
}

// Questions returns the deduplicated question list.
func (c *Controller) Questions() []Question {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// appendSystemLocked appends an informational system message. Caller
// holds c.mu.
func (c *Controller) appendSystemLocked(text string) {
	c.transcript.Append(Message{
		ID:        uuid.New().String(),
		Type:      MessageSystem,
		Timestamp: time.Now(),
		Text:      text,
	})
}

// appendErrorLocked appends an error-type system message. Caller holds
// c.mu.
func (c *Controller) appendErrorLocked(text string) {
	c.transcript.Append(Message{
		ID:        uuid.New().String(),
		Type:      MessageSystem,
		Timestamp: time.Now(),
		Text:      text,
		Error:     true,
	})
}
