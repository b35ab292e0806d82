// Package ws implements the streaming live-channel transport (spec §4.9
// "Streaming (live channel)"): a persistent bidirectional text-frame
// connection carrying JSON command envelopes and broadcast events.
// Grounded on the teacher's internal/ws/client.go read/write-pump pair,
// generalized from its IDENTIFY-gated protocol to Equion's per-command
// token model (every command, not just a handshake, carries its own
// token).
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"equion/internal/apperr"
	"equion/internal/dispatch"
	"equion/internal/fabric"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is spec §4.9's 10s heartbeat deadline: if no pong arrives
	// within this window the connection is considered dead.
	pongWait = 10 * time.Second

	// pingPeriod is spec §4.9's 5s keepalive interval.
	pingPeriod = 5 * time.Second

	maxMessageSize = 1 << 20
)

// Client is one live-channel connection.
type Client struct {
	addr   string
	conn   *websocket.Conn
	send   chan []byte
	dsp    *dispatch.Dispatcher
	logger *slog.Logger
}

var _ fabric.Sender = (*Client)(nil)

// NewClient wraps conn, registering addr as the connection's stable
// identity for the subscription fabric and voice registry.
func NewClient(addr string, conn *websocket.Conn, dsp *dispatch.Dispatcher, logger *slog.Logger) *Client {
	return &Client{
		addr:   addr,
		conn:   conn,
		send:   make(chan []byte, 64),
		dsp:    dsp,
		logger: logger,
	}
}

// Send implements fabric.Sender: a best-effort, non-blocking enqueue (spec
// §4.5 "dropping a recipient's send does not abort the fan-out").
func (c *Client) Send(payload []byte) {
	select {
	case c.send <- payload:
	default:
		c.logger.Warn("dropping broadcast frame, client send buffer full", "addr", c.addr)
	}
}

// envelope is the streaming command frame shape (spec §6).
type envelope struct {
	Command   string          `json:"command"`
	RequestID *string         `json:"requestId,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Run drives both pumps until the connection closes, then runs the
// disconnect sequence (spec §4.5 "disconnect", §5 heartbeat failure
// handling).
func (c *Client) Run(ctx context.Context) {
	c.dsp.Fabric.Register(c.addr, c)

	done := make(chan struct{})
	go c.writePump(done)
	c.readPump(ctx)
	close(done)

	c.dsp.Fabric.Unregister(c.addr)
	c.dsp.Voice.HandleDisconnect(context.Background(), c.addr)
}

func (c *Client) readPump(ctx context.Context) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleFrame(ctx, raw)
	}
}

func (c *Client) handleFrame(ctx context.Context, raw []byte) {
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		c.Send(errorFrame(apperr.ErrInvalidJSON, nil))
		return
	}

	name, _ := params["command"].(string)
	var requestID *string
	if v, ok := params["requestId"].(string); ok {
		requestID = &v
	}
	delete(params, "command")
	delete(params, "requestId")

	if name == "ping" {
		c.Send(fabric.PongFrame())
		return
	}

	result := c.dsp.Dispatch(ctx, name, params, dispatch.Call{Addr: c.addr, RequestID: requestID}, true)
	c.Send(encodeResult(result, requestID))
}

func (c *Client) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func encodeResult(r dispatch.Result, requestID *string) []byte {
	fields := map[string]any{"success": r.Success}
	if r.Success {
		for k, v := range r.Fields {
			fields[k] = v
		}
	} else {
		fields["error"] = r.Error
	}
	if requestID != nil {
		fields["requestId"] = *requestID
	}
	b, _ := json.Marshal(fields)
	return b
}

func errorFrame(err error, requestID *string) []byte {
	fields := map[string]any{"success": false, "error": err.Error()}
	if requestID != nil {
		fields["requestId"] = *requestID
	}
	b, _ := json.Marshal(fields)
	return b
}
