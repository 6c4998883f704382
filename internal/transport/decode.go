// decode.go translates raw push events into domain-typed updates.
package transport

import (
	"encoding/json"

	"github.com/drill-dev/drill/internal/interview"
)

// DecodePush maps a wire push event to a controller update. The second
// return is false for events the controller has no use for
// (connection_established and unknown types).
func DecodePush(ev PushEvent) (interview.PushUpdate, bool) {
	switch ev.Type {
	case PushAnswerEvaluated:
		var payload struct {
			QuestionID string          `json:"question_id"`
			MessageID  string          `json:"message_id"`
			Answer     string          `json:"answer"`
			Feedback   feedbackPayload `json:"feedback"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return interview.PushUpdate{}, false
		}
		fb := payload.Feedback.toDomain()
		return interview.PushUpdate{
			Kind:       interview.PushFeedback,
			QuestionID: payload.QuestionID,
			MessageID:  payload.MessageID,
			Text:       payload.Answer,
			Feedback:   &fb,
		}, true

	case PushInterviewCompleted:
		return interview.PushUpdate{Kind: interview.PushCompleted}, true

	case PushInterviewPaused:
		return interview.PushUpdate{Kind: interview.PushPaused}, true

	case PushInterviewResumed:
		return interview.PushUpdate{Kind: interview.PushResumed}, true

	case PushError:
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(ev.Payload, &payload)
		return interview.PushUpdate{Kind: interview.PushErrorNotice, Text: payload.Message}, true
	}

	return interview.PushUpdate{}, false
}
