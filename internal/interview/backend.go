// backend.go defines the remote-evaluation boundary consumed by the
// controller. The transport package provides the production implementation;
// tests substitute fakes.
package interview

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that the session or its question set does not exist
// on the backend. Transport implementations wrap it so the controller can
// apply the not-found policy without knowing wire details.
var ErrNotFound = errors.New("session not found")

// IsNotFound reports whether err is the not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AnswerRecord is a previously persisted answer with its feedback, as
// returned by the session history endpoint.
type AnswerRecord struct {
	Answer
	Feedback *Feedback
}

// ConversationEvent is one persisted follow-up exchange.
type ConversationEvent struct {
	QuestionID string
	Question   string
	Response   string
	At         time.Time
}

// History is the prior answer/conversation state for a session.
type History struct {
	Answers       []AnswerRecord
	Conversations []ConversationEvent
}

// SubmitRequest carries one answer to the evaluation endpoint.
type SubmitRequest struct {
	SessionID  string
	QuestionID string
	Text       string
	TimeTaken  time.Duration
}

// SubmitResult is the evaluation outcome. Feedback is nil when the
// backend accepted the answer without scoring it.
type SubmitResult struct {
	Feedback  *Feedback
	Completed bool
}

// ConverseRequest carries one follow-up exchange to the conversation
// endpoint.
type ConverseRequest struct {
	SessionID      string
	QuestionID     string
	OriginalAnswer string
	FollowUp       string
}

// Backend abstracts the remote evaluation service. Implementations must
// normalize wire-level feedback shapes into the canonical Feedback type;
// nothing above this boundary branches on field presence.
type Backend interface {
	Session(ctx context.Context, id string) (Session, error)
	Questions(ctx context.Context, id string) ([]Question, error)
	History(ctx context.Context, id string) (History, error)
	SubmitAnswer(ctx context.Context, req SubmitRequest) (SubmitResult, error)
	Converse(ctx context.Context, req ConverseRequest) (string, error)
	Finish(ctx context.Context, id string) error
}

// DraftStore persists per-(session, question) draft answer text across
// reloads. Save is an idempotent overwrite; Load returns the empty string
// when no draft exists.
type DraftStore interface {
	Save(sessionID, questionID, text string) error
	Load(sessionID, questionID string) (string, error)
	Clear(sessionID string) error
}
