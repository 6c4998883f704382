package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/drill-dev/drill/internal/interview"
)

func TestDecodePushAnswerEvaluated(t *testing.T) {
	payload, _ := json.Marshal(map[string]any{
		"question_id": "q-1",
		"message_id":  "m-1",
		"answer":      "pushed answer",
		"feedback":    map[string]any{"overall_score": 7.0},
	})

	u, ok := DecodePush(PushEvent{Type: PushAnswerEvaluated, Payload: payload})
	if !ok {
		t.Fatal("DecodePush = false for answer_evaluated")
	}
	if u.Kind != interview.PushFeedback {
		t.Errorf("Kind = %v, want feedback", u.Kind)
	}
	if u.QuestionID != "q-1" || u.MessageID != "m-1" {
		t.Errorf("ids = %s / %s", u.QuestionID, u.MessageID)
	}
	if u.Feedback == nil || u.Feedback.OverallScore != 7.0 {
		t.Errorf("feedback = %+v", u.Feedback)
	}
}

func TestDecodePushLifecycleEvents(t *testing.T) {
	cases := []struct {
		typ  string
		want interview.PushKind
	}{
		{PushInterviewCompleted, interview.PushCompleted},
		{PushInterviewPaused, interview.PushPaused},
		{PushInterviewResumed, interview.PushResumed},
	}
	for _, tc := range cases {
		u, ok := DecodePush(PushEvent{Type: tc.typ})
		if !ok {
			t.Errorf("DecodePush(%s) = false", tc.typ)
			continue
		}
		if u.Kind != tc.want {
			t.Errorf("DecodePush(%s).Kind = %v, want %v", tc.typ, u.Kind, tc.want)
		}
	}
}

func TestDecodePushError(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"message": "backlog"})
	u, ok := DecodePush(PushEvent{Type: PushError, Payload: payload})
	if !ok {
		t.Fatal("DecodePush = false for error event")
	}
	if u.Kind != interview.PushErrorNotice || u.Text != "backlog" {
		t.Errorf("update = %+v", u)
	}
}

func TestDecodePushIgnoresHandshakeAndUnknown(t *testing.T) {
	for _, typ := range []string{PushConnectionEstablished, "mystery_event"} {
		if _, ok := DecodePush(PushEvent{Type: typ}); ok {
			t.Errorf("DecodePush(%s) = true, want ignored", typ)
		}
	}
}

func TestPushChannelDeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		// The client identifies itself first.
		var hello map[string]string
		if err := conn.ReadJSON(&hello); err != nil {
			t.Errorf("read hello: %v", err)
			return
		}
		if hello["user_id"] != "user-1" {
			t.Errorf("user_id = %q, want user-1", hello["user_id"])
		}

		_ = conn.WriteJSON(map[string]any{
			"type": PushAnswerEvaluated,
			"data": map[string]any{"question_id": "q-1"},
		})
		_ = conn.WriteJSON(map[string]any{"type": PushInterviewCompleted})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewPushChannel(url, "user-1", 10*time.Millisecond)
	go ch.Run()
	defer ch.Close()

	var got []string
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch.Events():
			if !ok {
				if len(got) != 2 || got[0] != PushAnswerEvaluated || got[1] != PushInterviewCompleted {
					t.Errorf("events = %v, want [answer_evaluated, interview_completed]", got)
				}
				return
			}
			got = append(got, ev.Type)
		case <-deadline:
			t.Fatalf("events channel never closed; received %v", got)
		}
	}
}

func TestPushChannelReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drop the connection immediately after the handshake.
		var hello map[string]string
		_ = conn.ReadJSON(&hello)
		_ = conn.Close()
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewPushChannel(url, "user-1", 5*time.Millisecond)
	go ch.Run()
	defer ch.Close()

	select {
	case <-ch.Reconnects():
	case <-time.After(2 * time.Second):
		t.Fatal("no reconnect signal after a dropped connection")
	}
}

func TestPushChannelClosesReconnectsOnShutdown(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var hello map[string]string
		_ = conn.ReadJSON(&hello)
		_ = conn.WriteJSON(map[string]any{"type": PushInterviewCompleted})
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ch := NewPushChannel(url, "user-1", 10*time.Millisecond)
	go ch.Run()
	defer ch.Close()

	// Drain events until the channel closes, then the reconnect stream
	// must close too so range loops over it terminate.
	deadline := time.After(2 * time.Second)
	for open := true; open; {
		select {
		case _, ok := <-ch.Events():
			open = ok
		case <-deadline:
			t.Fatal("events channel never closed")
		}
	}
	select {
	case _, ok := <-ch.Reconnects():
		if ok {
			t.Fatal("unexpected reconnect signal during shutdown")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reconnects channel never closed after shutdown")
	}
}
