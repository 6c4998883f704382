package interview

import (
	"fmt"
	"testing"
	"time"
)

func TestDedupQuestionsByID(t *testing.T) {
	qs := []Question{
		{ID: "q-1", Text: "Explain goroutine scheduling."},
		{ID: "q-1", Text: "Explain goroutine scheduling."},
		{ID: "q-2", Text: "What is a channel?"},
	}
	got := DedupQuestions(qs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "q-1" || got[1].ID != "q-2" {
		t.Errorf("order = [%s, %s], want [q-1, q-2]", got[0].ID, got[1].ID)
	}
}

func TestDedupQuestionsByNormalizedText(t *testing.T) {
	qs := []Question{
		{ID: "q-1", Text: "What is a mutex?"},
		{ID: "q-2", Text: "  what is a   MUTEX "},
		{ID: "q-3", Text: "What is a semaphore?"},
	}
	got := DedupQuestions(qs)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[1].ID != "q-3" {
		t.Errorf("second kept question = %s, want q-3", got[1].ID)
	}
}

func TestNormalizeQuestionText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"What is a mutex?", "what is a mutex"},
		{"  Multiple   spaces  here  ", "multiple spaces here"},
		{"Trailing!!", "trailing"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeQuestionText(tc.in); got != tc.want {
			t.Errorf("NormalizeQuestionText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResumeIndex(t *testing.T) {
	cases := []struct {
		answered, total, want int
	}{
		{0, 5, 0},
		{3, 5, 3},
		{4, 5, 4},
		{5, 5, 4}, // everything answered: stay on the last question
		{7, 5, 4}, // history ahead of the question list
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := ResumeIndex(tc.answered, tc.total); got != tc.want {
			t.Errorf("ResumeIndex(%d, %d) = %d, want %d", tc.answered, tc.total, got, tc.want)
		}
	}
}

func testQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{ID: fmt.Sprintf("q-%d", i+1), Text: fmt.Sprintf("Question %d", i+1)}
	}
	return qs
}

func TestReplayHistoryOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := testQuestions(3)
	hist := History{
		Answers: []AnswerRecord{
			{Answer: Answer{QuestionID: "q-1", Text: "answer one", SubmittedAt: base}},
			{Answer: Answer{QuestionID: "q-2", Text: "answer two", SubmittedAt: base.Add(time.Minute)},
				Feedback: &Feedback{OverallScore: 7.0}},
		},
	}

	st := replayHistory(qs, hist)
	if st.answered != 2 {
		t.Fatalf("answered = %d, want 2", st.answered)
	}
	if st.resume != 2 {
		t.Fatalf("resume = %d, want 2", st.resume)
	}

	// Each answered exchange replays question then answer.
	wantTypes := []MessageType{MessageQuestion, MessageAnswer, MessageQuestion, MessageAnswer}
	if len(st.messages) != len(wantTypes) {
		t.Fatalf("len(messages) = %d, want %d", len(st.messages), len(wantTypes))
	}
	for i, want := range wantTypes {
		if st.messages[i].Type != want {
			t.Errorf("messages[%d].Type = %s, want %s", i, st.messages[i].Type, want)
		}
	}
	if st.messages[3].Feedback == nil || st.messages[3].Feedback.OverallScore != 7.0 {
		t.Error("replayed answer lost its feedback")
	}
}

func TestReplayHistoryLatestAnswerWins(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := testQuestions(1)
	hist := History{
		Answers: []AnswerRecord{
			{Answer: Answer{QuestionID: "q-1", Text: "first try", SubmittedAt: base}},
			{Answer: Answer{QuestionID: "q-1", Text: "second try", SubmittedAt: base.Add(time.Minute)}},
		},
	}

	st := replayHistory(qs, hist)
	if st.answered != 1 {
		t.Fatalf("answered = %d, want 1", st.answered)
	}
	var answers []Message
	for _, m := range st.messages {
		if m.Type == MessageAnswer {
			answers = append(answers, m)
		}
	}
	if len(answers) != 1 {
		t.Fatalf("answer messages = %d, want 1", len(answers))
	}
	if answers[0].Text != "second try" {
		t.Errorf("replayed answer = %q, want the latest", answers[0].Text)
	}
}

func TestReplayHistoryDeterministicIDs(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := testQuestions(2)
	hist := History{
		Answers: []AnswerRecord{
			{Answer: Answer{QuestionID: "q-1", Text: "answer", SubmittedAt: base}},
		},
	}

	a := replayHistory(qs, hist)
	b := replayHistory(qs, hist)
	if len(a.messages) != len(b.messages) {
		t.Fatalf("replay lengths differ: %d vs %d", len(a.messages), len(b.messages))
	}
	for i := range a.messages {
		if a.messages[i].ID != b.messages[i].ID {
			t.Errorf("messages[%d].ID differs across replays: %q vs %q", i, a.messages[i].ID, b.messages[i].ID)
		}
	}
}

func TestReplayHistoryConversationEvents(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := testQuestions(2)
	hist := History{
		Answers: []AnswerRecord{
			{Answer: Answer{QuestionID: "q-1", Text: "answer", SubmittedAt: base}},
		},
		Conversations: []ConversationEvent{
			{QuestionID: "q-1", Question: "why?", Response: "because", At: base.Add(time.Minute)},
		},
	}

	st := replayHistory(qs, hist)
	var sawUser, sawReply bool
	for _, m := range st.messages {
		switch {
		case m.Type == MessageUser && m.Text == "why?":
			sawUser = true
		case m.Type == MessageSystem && m.Text == "because":
			sawReply = true
		}
	}
	if !sawUser || !sawReply {
		t.Errorf("conversation exchange not replayed: user=%v reply=%v", sawUser, sawReply)
	}
}

func TestReplayHistoryIgnoresUnknownQuestions(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	qs := testQuestions(2)
	hist := History{
		Answers: []AnswerRecord{
			{Answer: Answer{QuestionID: "q-404", Text: "orphan", SubmittedAt: base}},
		},
	}

	st := replayHistory(qs, hist)
	if st.answered != 0 {
		t.Errorf("answered = %d, want 0 for history referencing unknown questions", st.answered)
	}
	if st.resume != 0 {
		t.Errorf("resume = %d, want 0", st.resume)
	}
}
