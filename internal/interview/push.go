// push.go applies live updates from the optional push channel. Pushes are
// supplementary to the REST flow: everything here is idempotent against
// state the REST path may already have applied.
package interview

import (
	"time"

	"github.com/drill-dev/drill/internal/log"
)

// PushKind tags a decoded push update.
type PushKind int

const (
	PushFeedback PushKind = iota
	PushCompleted
	PushPaused
	PushResumed
	PushErrorNotice
	PushReconnected
)

// PushUpdate is a push-channel event already normalized to domain types
// by the transport layer.
type PushUpdate struct {
	Kind       PushKind
	QuestionID string
	MessageID  string // dedup key for replayed deliveries
	Feedback   *Feedback
	Text       string
}

// ApplyPush merges one push update into controller state. Redelivered
// events collapse through the message log's ID dedup, so applying the
// same update twice is harmless.
func (c *Controller) ApplyPush(u PushUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	switch u.Kind {
	case PushFeedback:
		if u.Feedback == nil {
			return
		}
		// Prefer merging onto the already-appended answer for the
		// question; fall back to a standalone message.
		merged := false
		for _, m := range c.transcript.ByQuestion(u.QuestionID) {
			if m.Type == MessageAnswer && m.Feedback == nil {
				c.transcript.SetFeedback(m.ID, u.Feedback)
				merged = true
			}
		}
		if !merged && u.MessageID != "" {
			c.transcript.Append(Message{
				ID:         u.MessageID,
				Type:       MessageAnswer,
				Timestamp:  time.Now(),
				QuestionID: u.QuestionID,
				Text:       u.Text,
				Feedback:   u.Feedback,
			})
		}
		c.record(log.EventFeedbackReceived, log.Event{QuestionID: u.QuestionID, Score: u.Feedback.OverallScore})
		c.emit(EventTranscript)

	case PushCompleted:
		if c.session.Status != StatusCompleted {
			c.completeLocked()
			c.emit(EventTranscript)
		}

	case PushPaused:
		if c.session.Status == StatusActive {
			c.session.Status = StatusPaused
			c.timer.Pause()
			c.sched.Cancel(taskTick)
			c.emit(EventTimer)
		}

	case PushResumed:
		if c.session.Status == StatusPaused {
			c.session.Status = StatusActive
			c.resumePresentationLocked()
			c.emit(EventTimer)
		}

	case PushErrorNotice:
		if u.Text != "" {
			c.appendErrorLocked(u.Text)
			c.emit(EventTranscript)
		}

	case PushReconnected:
		c.record(log.EventPushReconnect, log.Event{})
	}
}
