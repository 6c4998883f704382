// conversation.go implements the follow-up sub-mode: a nested exchange
// loop scoped to one previously answered question.
package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drill-dev/drill/internal/log"
)

// moveOnPhrases are the utterances that mean "next question". Matching is
// case-insensitive and whole-utterance (after trimming), so an ordinary
// technical follow-up that merely contains "next" does not end the
// conversation.
var moveOnPhrases = []string{
	"next question",
	"move on",
	"next",
	"skip",
	"let's move on",
	"다음 질문",
	"다음",
	"넘어가자",
}

// IsMoveOnIntent reports whether text is a request to leave conversation
// mode and advance to the next question.
func IsMoveOnIntent(text string) bool {
	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.TrimRight(norm, ".!?~ ")
	for _, phrase := range moveOnPhrases {
		if norm == phrase {
			return true
		}
	}
	return false
}

// EnterConversation switches input into follow-up mode for the given
// question. The question must have a feedback-bearing answer in the
// transcript.
func (c *Controller) EnterConversation(questionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrNotLoaded
	}
	if c.session.Status == StatusCompleted {
		return ErrSessionCompleted
	}

	var found *Message
	for _, m := range c.transcript.ByQuestion(questionID) {
		if m.Type == MessageAnswer && m.Feedback != nil {
			mm := m
			found = &mm
		}
	}
	if found == nil {
		return fmt.Errorf("question %s has no scored answer to discuss", questionID)
	}

	c.conv = &ConversationContext{
		QuestionID:     questionID,
		OriginalAnswer: found.Text,
		Feedback:       *found.Feedback,
	}
	c.timer.Pause()
	c.sched.Cancel(taskTick)
	c.sched.Cancel(taskAutoAdvance)

	c.appendSystemLocked("Follow-up mode: ask anything about this question, or say \"next question\" to move on.")
	c.record(log.EventConversationStarted, log.Event{QuestionID: questionID})
	c.emit(EventConversation)
	c.emit(EventTranscript)
	return nil
}

// InConversation reports whether follow-up mode is active.
func (c *Controller) InConversation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conv != nil
}

// ExitConversation leaves follow-up mode explicitly, discarding the
// conversation context.
func (c *Controller) ExitConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitConversationLocked()
}

func (c *Controller) exitConversationLocked() {
	if c.conv == nil {
		return
	}
	c.conv = nil
	if c.session.Status == StatusActive {
		c.timer.Resume()
		if c.timer.State() == TimerRunning {
			c.scheduleTickLocked()
		}
	}
	c.emit(EventConversation)
}

// FollowUp handles one follow-up utterance. A move-on intent ends the
// conversation and schedules the advance to the next question; anything
// else goes to the conversation endpoint and the reply is appended as a
// non-scored system message. One outstanding call at a time, same lock
// discipline as Submit.
func (c *Controller) FollowUp(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	if c.conv == nil {
		c.mu.Unlock()
		return ErrNotInConversation
	}
	if text == "" {
		c.mu.Unlock()
		return ErrEmptyAnswer
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}

	conv := *c.conv

	c.transcript.Append(Message{
		ID:         uuid.New().String(),
		Type:       MessageUser,
		Timestamp:  time.Now(),
		QuestionID: conv.QuestionID,
		Text:       text,
	})

	if IsMoveOnIntent(text) {
		c.appendSystemLocked("Got it — moving to the next question.")
		c.conv = nil
		c.emit(EventConversation)
		c.emit(EventTranscript)
		c.sched.Schedule(taskResume, c.opts.ResumeDelay, func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.closed || c.session.Status == StatusCompleted {
				return
			}
			c.advanceLocked()
		})
		c.mu.Unlock()
		return nil
	}

	c.submitting = true
	c.emit(EventTranscript)
	req := ConverseRequest{
		SessionID:      c.session.ID,
		QuestionID:     conv.QuestionID,
		OriginalAnswer: conv.OriginalAnswer,
		FollowUp:       text,
	}
	c.mu.Unlock()

	reply, err := c.backend.Converse(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.submitting = false }()

	if c.closed {
		return nil
	}
	if err != nil {
		c.appendErrorLocked(fmt.Sprintf("Follow-up failed: %v", err))
		c.emit(EventTranscript)
		return err
	}

	c.transcript.Append(Message{
		ID:         uuid.New().String(),
		Type:       MessageSystem,
		Timestamp:  time.Now(),
		QuestionID: conv.QuestionID,
		Text:       reply,
		Feedback:   &Feedback{Message: reply, Conversational: true},
	})
	c.record(log.EventConversationReply, log.Event{QuestionID: conv.QuestionID})
	c.emit(EventTranscript)
	return nil
}
