// Package interview implements the mock-interview session controller:
// loading and resuming sessions, sequencing questions, submitting answers
// for remote scoring, the follow-up conversation sub-mode, and the
// per-question countdown.
package interview

import (
	"strings"
	"time"
)

// Difficulty is the ordered difficulty level of a question.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

// String returns the wire/display form of the difficulty.
func (d Difficulty) String() string {
	switch d {
	case DifficultyEasy:
		return "easy"
	case DifficultyHard:
		return "hard"
	default:
		return "medium"
	}
}

// ParseDifficulty maps a wire string to a Difficulty.
// Unknown values fall back to medium.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Question is a single interview question. Immutable once loaded.
type Question struct {
	ID         string
	Text       string
	Category   string
	Difficulty Difficulty

	// Compound-question metadata. GroupID is empty for standalone
	// questions; SubIndex is 1-based within the group.
	GroupID  string
	SubIndex int
	SubTotal int

	// Context is an optional note shown alongside the question,
	// already flattened to a display string by the transport layer.
	Context string
}

// QuestionGroup is a compound question split into ordered sub-questions
// sharing a parent identity. Standalone questions become singleton groups.
type QuestionGroup struct {
	ID  string
	Sub []Question
}

// GroupQuestions folds a question list into groups, preserving first-seen
// order. Questions without a GroupID form singleton groups keyed by their
// own ID.
func GroupQuestions(questions []Question) []QuestionGroup {
	var groups []QuestionGroup
	index := make(map[string]int)

	for _, q := range questions {
		key := q.GroupID
		if key == "" {
			key = q.ID
		}
		if i, ok := index[key]; ok {
			groups[i].Sub = append(groups[i].Sub, q)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, QuestionGroup{ID: key, Sub: []Question{q}})
	}

	return groups
}

// SessionStatus is the lifecycle state of an interview session.
type SessionStatus string

const (
	StatusPreparing SessionStatus = "preparing"
	StatusActive    SessionStatus = "active"
	StatusPaused    SessionStatus = "paused"
	StatusCompleted SessionStatus = "completed" // terminal
)

// Progress tracks position within the question set.
type Progress struct {
	Current int
	Total   int
	Percent float64
}

// Session is one end-to-end mock-interview run.
type Session struct {
	ID       string
	Status   SessionStatus
	Progress Progress
	Elapsed  time.Duration
}

// Answer is a submitted response to a question. Never mutated after
// creation; a resubmission creates a new Answer.
type Answer struct {
	QuestionID  string
	Text        string
	SubmittedAt time.Time
}

// Feedback is the evaluation returned for a submitted answer.
// Conversational marks a free-form dialogue reply rather than a scored
// evaluation.
type Feedback struct {
	OverallScore   float64
	Criteria       map[string]float64
	Message        string
	Suggestions    []string
	Conversational bool
}

// MessageType tags a transcript message variant.
type MessageType string

const (
	MessageSystem   MessageType = "system"
	MessageQuestion MessageType = "question"
	MessageAnswer   MessageType = "answer"
	MessageUser     MessageType = "user" // conversation-mode utterance
)

// Message is one transcript unit. ID is globally unique and used for
// deduplication; answer messages may carry Feedback once scored.
type Message struct {
	ID         string
	Type       MessageType
	Timestamp  time.Time
	QuestionID string
	Text       string
	Feedback   *Feedback

	// Error marks a system message that reports a failure.
	Error bool
}

// ConversationContext holds the state of the follow-up sub-mode for one
// answered question. It is ephemeral and never persisted.
type ConversationContext struct {
	QuestionID     string
	OriginalAnswer string
	Feedback       Feedback
}
