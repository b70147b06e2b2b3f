package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tankreport/internal/config"
	"tankreport/internal/infrastructure"
)

const (
	writeWait = config.WebSocketWriteWait
	pongWait  = config.WebSocketPongWait

	// Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192
	sendBuffer     = 16
)

// ErrUnknownMessage is replied to a request of an unknown type
var ErrUnknownMessage = errors.New("unknown message type")

// RequestHandler answers one filter request with the reply payload
type RequestHandler func(ctx context.Context, req Request) (any, error)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub     *Hub
	conn    Connection
	handler RequestHandler

	mu     sync.Mutex
	send   chan []byte
	closed bool

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time

	logger *slog.Logger
}

// NewClient creates a client for conn; traceID ties its logs to the
// upgrade request
func NewClient(hub *Hub, conn Connection, traceID string, handler RequestHandler, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		handler:     handler,
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.client"),
			slog.String("client_id", id)),
	}
}

// ID returns the client ID
func (c *Client) ID() string {
	return c.id
}

func (c *Client) context() context.Context {
	ctx := context.Background()
	if c.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, c.traceID)
	}
	return ctx
}

// Send queues a response. It reports false when the buffer is full.
func (c *Client) Send(resp Response) bool {
	data, err := resp.encode()
	if err != nil {
		c.logger.ErrorContext(c.context(), "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", resp.Type))
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	select {
	case c.send <- data:
		c.hub.metrics.message(c.context(), "out", resp.Type)
		return true
	default:
		c.hub.metrics.dropped(c.context())
		c.logger.WarnContext(c.context(), "Client send buffer full, dropping message",
			slog.String("message_type", resp.Type))
		return false
	}
}

// close ends the write pump; later sends are discarded
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump reads requests until the connection fails, answering each one
// through the handler
func (c *Client) ReadPump() {
	ctx := c.context()
	defer func() {
		c.logger.InfoContext(ctx, "WebSocket client disconnected",
			slog.Duration("connection_duration", time.Since(c.connectedAt)))
		c.hub.unregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			c.Send(errorResponse("", fmt.Errorf("invalid message: %w", err)))
			continue
		}
		c.hub.metrics.message(ctx, "in", req.Type)
		c.handle(ctx, req)
	}
}

func (c *Client) handle(ctx context.Context, req Request) {
	switch req.Type {
	case TypeHeartbeat:
		c.logger.DebugContext(ctx, "Heartbeat received")
	case TypeFilter:
		data, err := c.handler(ctx, req)
		if err != nil {
			c.logger.WarnContext(ctx, "filter request failed",
				slog.String("request_id", req.ID),
				slog.String("error", err.Error()))
			c.Send(errorResponse(req.ID, err))
			return
		}
		c.Send(newResponse(TypeFilterResult, req.ID, data))
	default:
		c.Send(errorResponse(req.ID, fmt.Errorf("%w: %q", ErrUnknownMessage, req.Type)))
	}
}

// WritePump sends queued messages and pings until the send channel closes
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.context(), "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.context(), "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
