// normalize.go maps loosely shaped wire payloads onto the canonical
// interview types. Field names vary across backend call sites (score vs
// overall_score, suggestions vs improvement_tips); everything is resolved
// here so nothing deeper in the pipeline branches on field presence.
package transport

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/drill-dev/drill/internal/interview"
)

type sessionPayload struct {
	ID      string  `json:"id"`
	Status  string  `json:"status"`
	Current int     `json:"current_question_index"`
	Total   int     `json:"total_questions"`
	Percent float64 `json:"percentage"`
	Elapsed int64   `json:"elapsed_time"`
}

func (p sessionPayload) toDomain(fallbackID string) interview.Session {
	id := p.ID
	if id == "" {
		id = fallbackID
	}

	status := interview.SessionStatus(strings.ToLower(p.Status))
	switch status {
	case interview.StatusPreparing, interview.StatusActive, interview.StatusPaused, interview.StatusCompleted:
	default:
		status = interview.StatusPreparing
	}

	return interview.Session{
		ID:     id,
		Status: status,
		Progress: interview.Progress{
			Current: p.Current,
			Total:   p.Total,
			Percent: p.Percent,
		},
		Elapsed: time.Duration(p.Elapsed) * time.Second,
	}
}

type questionPayload struct {
	ID         string          `json:"id"`
	Text       string          `json:"text"`
	Question   string          `json:"question"` // alternate field name
	Category   string          `json:"category"`
	Difficulty string          `json:"difficulty"`
	GroupID    string          `json:"group_id"`
	ParentID   string          `json:"parent_id"` // alternate field name
	SubIndex   int             `json:"sub_index"`
	SubTotal   int             `json:"sub_total"`
	Context    json.RawMessage `json:"context"`
}

func (p questionPayload) toDomain() interview.Question {
	text := p.Text
	if text == "" {
		text = p.Question
	}
	groupID := p.GroupID
	if groupID == "" {
		groupID = p.ParentID
	}

	return interview.Question{
		ID:         p.ID,
		Text:       text,
		Category:   p.Category,
		Difficulty: interview.ParseDifficulty(p.Difficulty),
		GroupID:    groupID,
		SubIndex:   p.SubIndex,
		SubTotal:   p.SubTotal,
		Context:    flattenContext(p.Context),
	}
}

// flattenContext turns the context payload (a bare string, an object
// with note/text/description fields, or a list of either) into one
// display string.
func flattenContext(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, key := range []string{"note", "text", "description"} {
			if v, ok := obj[key].(string); ok && v != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var parts []string
		for _, item := range list {
			if part := flattenContext(item); part != "" {
				parts = append(parts, part)
			}
		}
		return strings.Join(parts, " ")
	}

	return ""
}

type feedbackPayload struct {
	OverallScore   *float64           `json:"overall_score"`
	Score          *float64           `json:"score"` // alternate field name
	Criteria       map[string]float64 `json:"criteria"`
	Detailed       map[string]float64 `json:"detailed_scores"` // alternate field name
	Message        string             `json:"message"`
	Feedback       string             `json:"feedback"` // alternate field name
	Suggestions    []string           `json:"suggestions"`
	Tips           []string           `json:"improvement_tips"` // alternate field name
	Conversational bool               `json:"is_conversational"`
}

func (p feedbackPayload) toDomain() interview.Feedback {
	fb := interview.Feedback{
		Message:        p.Message,
		Suggestions:    p.Suggestions,
		Criteria:       p.Criteria,
		Conversational: p.Conversational,
	}
	switch {
	case p.OverallScore != nil:
		fb.OverallScore = *p.OverallScore
	case p.Score != nil:
		fb.OverallScore = *p.Score
	}
	if fb.Message == "" {
		fb.Message = p.Feedback
	}
	if len(fb.Suggestions) == 0 {
		fb.Suggestions = p.Tips
	}
	if len(fb.Criteria) == 0 {
		fb.Criteria = p.Detailed
	}
	return fb
}

type answerPayload struct {
	QuestionID  string           `json:"question_id"`
	Answer      string           `json:"answer"`
	Text        string           `json:"text"` // alternate field name
	SubmittedAt time.Time        `json:"submitted_at"`
	Feedback    *feedbackPayload `json:"feedback"`
}

func (p answerPayload) toDomain() interview.AnswerRecord {
	text := p.Answer
	if text == "" {
		text = p.Text
	}

	rec := interview.AnswerRecord{
		Answer: interview.Answer{
			QuestionID:  p.QuestionID,
			Text:        text,
			SubmittedAt: p.SubmittedAt,
		},
	}
	if p.Feedback != nil {
		fb := p.Feedback.toDomain()
		rec.Feedback = &fb
	}
	return rec
}

type conversationPayload struct {
	QuestionID string    `json:"question_id"`
	Question   string    `json:"conversation_question"`
	Response   string    `json:"response"`
	At         time.Time `json:"created_at"`
}

func (p conversationPayload) toDomain() interview.ConversationEvent {
	return interview.ConversationEvent{
		QuestionID: p.QuestionID,
		Question:   p.Question,
		Response:   p.Response,
		At:         p.At,
	}
}
