// log.go implements the ordered, deduplicated transcript message log.
package interview

// MessageLog is an append-only log of transcript messages, ordered by
// timestamp and deduplicated by message ID. It is not safe for concurrent
// use; the controller serializes access.
type MessageLog struct {
	messages []Message
	byID     map[string]int
}

// NewMessageLog creates an empty MessageLog.
func NewMessageLog() *MessageLog {
	return &MessageLog{byID: make(map[string]int)}
}

// Append inserts msg preserving non-decreasing timestamp order. Messages
// with equal timestamps keep arrival order. Appending a message whose ID
// already exists is a no-op, so replay and reconnection paths can
// re-deliver the same logical event safely.
func (l *MessageLog) Append(msg Message) {
	if _, ok := l.byID[msg.ID]; ok {
		return
	}

	// Find the insertion point: after the last message whose timestamp
	// is <= msg's. The log is small enough that a linear scan from the
	// tail is fine and keeps equal-timestamp ordering stable.
	i := len(l.messages)
	for i > 0 && l.messages[i-1].Timestamp.After(msg.Timestamp) {
		i--
	}

	l.messages = append(l.messages, Message{})
	copy(l.messages[i+1:], l.messages[i:])
	l.messages[i] = msg

	l.reindex(i)
}

// reindex rebuilds the ID index from position i onward.
func (l *MessageLog) reindex(from int) {
	for j := from; j < len(l.messages); j++ {
		l.byID[l.messages[j].ID] = j
	}
}

// ReplaceKeepingSystem replaces the log contents with msgs while
// preserving any system message appended before the call. It is used only
// by the session loader so that contextual banners inserted before
// history replay survive a reload.
func (l *MessageLog) ReplaceKeepingSystem(msgs []Message) {
	var kept []Message
	for _, m := range l.messages {
		if m.Type == MessageSystem {
			kept = append(kept, m)
		}
	}

	l.messages = nil
	l.byID = make(map[string]int)

	for _, m := range kept {
		l.Append(m)
	}
	for _, m := range msgs {
		l.Append(m)
	}
}

// SetFeedback attaches feedback to the message with the given ID.
// Returns false if no such message exists.
func (l *MessageLog) SetFeedback(id string, fb *Feedback) bool {
	i, ok := l.byID[id]
	if !ok {
		return false
	}
	l.messages[i].Feedback = fb
	return true
}

// Get returns the message with the given ID.
func (l *MessageLog) Get(id string) (Message, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Message{}, false
	}
	return l.messages[i], true
}

// Len returns the number of messages in the log.
func (l *MessageLog) Len() int {
	return len(l.messages)
}

// Messages returns a copy of the log in order.
func (l *MessageLog) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// ByQuestion returns all messages associated with the given question ID,
// in log order.
func (l *MessageLog) ByQuestion(questionID string) []Message {
	var out []Message
	for _, m := range l.messages {
		if m.QuestionID == questionID {
			out = append(out, m)
		}
	}
	return out
}

// ByType returns all messages of the given type, in log order.
func (l *MessageLog) ByType(t MessageType) []Message {
	var out []Message
	for _, m := range l.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
