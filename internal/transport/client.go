// Package transport talks to the remote evaluation service: the REST
// surface used by the session controller and the optional websocket push
// channel. All wire-shape quirks (inconsistent feedback field names,
// nested context payloads) are normalized here; callers only ever see the
// canonical interview types.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/drill-dev/drill/internal/interview"
)

// APIError is a non-2xx response carrying a server-supplied message,
// surfaced to the user verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server rejected request (%d)", e.Status)
}

// Client is the REST client for the evaluation service. It implements
// interview.Backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given base URL with the given
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// envelope is the standard {success, data} response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// get issues a GET and decodes the envelope's data field into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("transport: building request: %w", err)
	}
	return c.do(req, out)
}

// post issues a POST with a JSON body and decodes the envelope's data
// field into out (out may be nil).
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("transport: marshalling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("transport: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("transport: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("transport: reading response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("transport: %s: %w", req.URL.Path, interview.ErrNotFound)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("transport: decoding response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("transport: decoding payload: %w", err)
		}
	}
	return nil
}

// Session fetches session metadata (GET /session/{id}).
func (c *Client) Session(ctx context.Context, id string) (interview.Session, error) {
	var payload sessionPayload
	if err := c.get(ctx, "/session/"+id, &payload); err != nil {
		return interview.Session{}, err
	}
	return payload.toDomain(id), nil
}

// Questions fetches the ordered question list
// (GET /session/{id}/questions). The backend's own current-question
// pointer is intentionally discarded: the controller derives the resume
// point from answer history instead.
func (c *Client) Questions(ctx context.Context, id string) ([]interview.Question, error) {
	var payload struct {
		Questions    []questionPayload `json:"questions"`
		CurrentIndex int               `json:"current_question_index"`
	}
	if err := c.get(ctx, "/session/"+id+"/questions", &payload); err != nil {
		return nil, err
	}

	out := make([]interview.Question, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		out = append(out, q.toDomain())
	}
	return out, nil
}

// History fetches prior answers and conversation exchanges
// (GET /session/{id}/data).
func (c *Client) History(ctx context.Context, id string) (interview.History, error) {
	var payload struct {
		Answers       []answerPayload       `json:"answers"`
		Conversations []conversationPayload `json:"conversations"`
	}
	if err := c.get(ctx, "/session/"+id+"/data", &payload); err != nil {
		return interview.History{}, err
	}

	var hist interview.History
	for _, a := range payload.Answers {
		hist.Answers = append(hist.Answers, a.toDomain())
	}
	for _, ev := range payload.Conversations {
		hist.Conversations = append(hist.Conversations, ev.toDomain())
	}
	return hist, nil
}

// SubmitAnswer posts an answer for evaluation (POST /answer).
func (c *Client) SubmitAnswer(ctx context.Context, req interview.SubmitRequest) (interview.SubmitResult, error) {
	body := map[string]any{
		"interview_id": req.SessionID,
		"question_id":  req.QuestionID,
		"answer":       req.Text,
		"time_taken":   int(req.TimeTaken.Seconds()),
	}

	var payload struct {
		Feedback    *feedbackPayload `json:"feedback"`
		IsCompleted bool             `json:"is_completed"`
	}
	if err := c.post(ctx, "/answer", body, &payload); err != nil {
		return interview.SubmitResult{}, err
	}

	res := interview.SubmitResult{Completed: payload.IsCompleted}
	if payload.Feedback != nil {
		fb := payload.Feedback.toDomain()
		res.Feedback = &fb
	}
	return res, nil
}

// Converse posts a follow-up exchange (POST /conversation).
func (c *Client) Converse(ctx context.Context, req interview.ConverseRequest) (string, error) {
	body := map[string]any{
		"interview_id":          req.SessionID,
		"question_id":           req.QuestionID,
		"original_answer":       req.OriginalAnswer,
		"conversation_question": req.FollowUp,
	}

	var payload struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "/conversation", body, &payload); err != nil {
		return "", err
	}
	return payload.Response, nil
}

// Finish explicitly ends the session (POST /{id}/finish).
func (c *Client) Finish(ctx context.Context, id string) error {
	return c.post(ctx, "/"+id+"/finish", map[string]any{}, nil)
}

var _ interview.Backend = (*Client)(nil)
