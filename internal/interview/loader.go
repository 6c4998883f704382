// loader.go implements session loading: question deduplication, history
// replay, and resume-point computation.
package interview

import (
	"fmt"
	"strings"
	"time"
)

// DedupQuestions removes duplicate questions, first by ID and then by
// normalized text, preserving first-seen order. The double pass is
// defensive: a backend fault can repeat a question under a fresh ID.
func DedupQuestions(questions []Question) []Question {
	seenID := make(map[string]bool)
	seenText := make(map[string]bool)

	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if seenID[q.ID] {
			continue
		}
		norm := NormalizeQuestionText(q.Text)
		if seenText[norm] {
			continue
		}
		seenID[q.ID] = true
		seenText[norm] = true
		out = append(out, q)
	}
	return out
}

// NormalizeQuestionText canonicalizes question text for duplicate
// detection: lowercase, collapsed whitespace, trailing punctuation
// stripped.
func NormalizeQuestionText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".?! ")
}

// ResumeIndex computes the question index to present after a reload. It
// derives the index from the answer history instead of trusting the
// backend's own pointer, which can disagree with history after retries.
func ResumeIndex(answered, total int) int {
	if total <= 0 {
		return 0
	}
	if answered > total-1 {
		return total - 1
	}
	return answered
}

// deterministic replay-message IDs, so reload inserts the same logical
// events idempotently.
func replayAnswerID(questionID string, at time.Time) string {
	return fmt.Sprintf("answer:%s:%d", questionID, at.UnixNano())
}

func replayFeedbackID(questionID string, at time.Time) string {
	return fmt.Sprintf("feedback:%s:%d", questionID, at.UnixNano())
}

func questionMessageID(questionID string) string {
	return "question:" + questionID
}

func conversationIDs(questionID string, at time.Time) (string, string) {
	return fmt.Sprintf("conv-q:%s:%d", questionID, at.UnixNano()),
		fmt.Sprintf("conv-r:%s:%d", questionID, at.UnixNano())
}

// replayState is the outcome of replaying persisted history over a
// deduplicated question list.
type replayState struct {
	messages []Message
	answered int
	resume   int
}

// replayHistory builds the resume-ordered transcript for the given
// questions and history. For each question with a recorded answer it
// emits the question message followed by the answer (and feedback reply,
// when present); the current question's prompt is emitted last.
func replayHistory(questions []Question, hist History) replayState {
	latest := make(map[string]AnswerRecord)
	for _, rec := range hist.Answers {
		prev, ok := latest[rec.QuestionID]
		if !ok || rec.SubmittedAt.After(prev.SubmittedAt) {
			latest[rec.QuestionID] = rec
		}
	}

	convByQuestion := make(map[string][]ConversationEvent)
	for _, ev := range hist.Conversations {
		convByQuestion[ev.QuestionID] = append(convByQuestion[ev.QuestionID], ev)
	}

	var st replayState
	for _, q := range questions {
		rec, ok := latest[q.ID]
		if !ok {
			continue
		}
		st.answered++

		st.messages = append(st.messages, Message{
			ID:         questionMessageID(q.ID),
			Type:       MessageQuestion,
			Timestamp:  rec.SubmittedAt.Add(-time.Millisecond),
			QuestionID: q.ID,
			Text:       q.Text,
		})

		answerMsg := Message{
			ID:         replayAnswerID(q.ID, rec.SubmittedAt),
			Type:       MessageAnswer,
			Timestamp:  rec.SubmittedAt,
			QuestionID: q.ID,
			Text:       rec.Text,
			Feedback:   rec.Feedback,
		}
		st.messages = append(st.messages, answerMsg)

		for _, ev := range convByQuestion[q.ID] {
			qid, rid := conversationIDs(q.ID, ev.At)
			st.messages = append(st.messages,
				Message{
					ID:         qid,
					Type:       MessageUser,
					Timestamp:  ev.At,
					QuestionID: q.ID,
					Text:       ev.Question,
				},
				Message{
					ID:         rid,
					Type:       MessageSystem,
					Timestamp:  ev.At.Add(time.Millisecond),
					QuestionID: q.ID,
					Text:       ev.Response,
				},
			)
		}
	}

	st.resume = ResumeIndex(st.answered, len(questions))
	return st
}
