// push.go implements the optional websocket push channel for live session
// updates. The REST surface is the primary contract; deployments may run
// with the channel disabled entirely.
package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Push event types sent by the server.
const (
	PushConnectionEstablished = "connection_established"
	PushInterviewStarted      = "interview_started"
	PushAnswerEvaluated       = "answer_evaluated"
	PushInterviewCompleted    = "interview_completed"
	PushInterviewPaused       = "interview_paused"
	PushInterviewResumed      = "interview_resumed"
	PushError                 = "error"
)

// PushEvent is one typed event delivered over the push channel. Payload
// is left raw; consumers decode the shapes they care about.
type PushEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"data"`
}

// PushChannel maintains a websocket connection to the evaluation service,
// reconnecting after a fixed delay whenever the connection drops, until
// Close is called.
type PushChannel struct {
	url            string
	userID         string
	reconnectDelay time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool

	events chan PushEvent
	// Reconnects notifies listeners (best-effort) each time the channel
	// re-dials after a drop.
	reconnects chan struct{}
}

// NewPushChannel creates a channel for the given websocket URL. Run must
// be called to start it.
func NewPushChannel(url, userID string, reconnectDelay time.Duration) *PushChannel {
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &PushChannel{
		url:            url,
		userID:         userID,
		reconnectDelay: reconnectDelay,
		events:         make(chan PushEvent, 32),
		reconnects:     make(chan struct{}, 1),
	}
}

// Events returns the stream of decoded push events. The channel is closed
// when the push channel shuts down.
func (p *PushChannel) Events() <-chan PushEvent { return p.events }

// Reconnects signals each re-dial after a dropped connection. The channel
// is closed when the push channel shuts down.
func (p *PushChannel) Reconnects() <-chan struct{} { return p.reconnects }

// Run dials the server and pumps events until Close. It blocks; call it
// on its own goroutine. Dial failures and dropped connections both go
// through the same fixed-delay reconnect path.
func (p *PushChannel) Run() {
	first := true
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			close(p.events)
			close(p.reconnects)
			return
		}
		p.mu.Unlock()

		if !first {
			select {
			case p.reconnects <- struct{}{}:
			default:
			}
			time.Sleep(p.reconnectDelay)
		}
		first = false

		conn, _, err := websocket.DefaultDialer.Dial(p.url, nil)
		if err != nil {
			continue
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			_ = conn.Close()
			close(p.events)
			close(p.reconnects)
			return
		}
		p.conn = conn
		p.mu.Unlock()

		// Identify ourselves; the server scopes events by user.
		if err := conn.WriteJSON(map[string]string{"user_id": p.userID}); err != nil {
			_ = conn.Close()
			continue
		}

		p.readLoop(conn)
	}
}

// readLoop decodes events from one connection until it drops.
func (p *PushChannel) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		var ev PushEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return
		}

		select {
		case p.events <- ev:
		default:
			// Consumer fell behind; drop rather than stall the socket.
		}

		if ev.Type == PushInterviewCompleted {
			// No reconnect after a completed session.
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			return
		}
	}
}

// Close stops the channel and any future reconnection.
func (p *PushChannel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
