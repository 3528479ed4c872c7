package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/g-s-k-zoro/gsk-man-page/internal/interaction"
	"github.com/g-s-k-zoro/gsk-man-page/internal/view"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Pointer and resize messages are tiny
	maxMessageSize = 4 * 1024

	sendBufferSize  = 64
	inboxBufferSize = 64
)

var errSlowClient = errors.New("client send buffer full")

// Client is one browser connection and the graph view it drives.
type Client struct {
	id      string
	profile string
	hub     *Hub
	conn    *websocket.Conn
	view    *view.GraphView
	inbox   chan view.Input
	send    chan []byte
	cancel  context.CancelFunc
	logger  *zap.Logger
}

// NewClient wraps an upgraded connection around a mounted view.
func NewClient(profile string, hub *Hub, conn *websocket.Conn, v *view.GraphView, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:      id,
		profile: profile,
		hub:     hub,
		conn:    conn,
		view:    v,
		inbox:   make(chan view.Input, inboxBufferSize),
		send:    make(chan []byte, sendBufferSize),
		logger: logger.With(
			zap.String("profile", profile),
			zap.String("connectionID", id),
		),
	}
}

// Start registers the client and runs its pumps until the peer goes away.
// It reports false, and closes the connection, if the hub has stopped. The
// view lives as long as the connection or the hub, whichever ends first.
func (c *Client) Start() bool {
	ctx, cancel := context.WithCancel(c.hub.ctx)
	c.cancel = cancel
	if !c.hub.join(c) {
		c.cancel()
		c.view.Close()
		c.conn.Close()
		return false
	}

	go c.writePump()
	go c.runView(ctx)
	go c.readPump(ctx)
	return true
}

// runView is the only writer to c.send, so it owns closing it.
func (c *Client) runView(ctx context.Context) {
	err := c.view.Run(ctx, c.inbox, c.emit)
	if err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Info("Graph view stopped", zap.Error(err))
	}
	close(c.send)
	c.hub.leave(c)
}

// emit queues an output for the write pump. Frames are dropped when the
// buffer is full; anything else means the client cannot keep up.
func (c *Client) emit(out view.Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
	}
	if out.Type == view.OutputFrame {
		c.logger.Debug("Dropping frame for slow client")
		return nil
	}
	return errSlowClient
}

// offer hands an input to the view without blocking the caller.
func (c *Client) offer(in view.Input) bool {
	select {
	case c.inbox <- in:
		return true
	default:
		return false
	}
}

// deliver hands an input to the view. Pointer releases end drags and are
// persisted, so they wait for room in the inbox; other inputs are dropped
// when it is full.
func (c *Client) deliver(ctx context.Context, in view.Input) bool {
	if c.offer(in) {
		return true
	}
	if !endsGesture(in) {
		return false
	}
	select {
	case c.inbox <- in:
		return true
	case <-ctx.Done():
		return false
	}
}

func endsGesture(in view.Input) bool {
	if in.Pointer == nil {
		return false
	}
	return in.Pointer.Kind == interaction.PointerUp || in.Pointer.Kind == interaction.PointerLeave
}

// readPump pumps messages from the WebSocket connection into the view
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.cancel()
		c.conn.Close()
		c.logger.Info("Read pump stopped")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			c.logger.Warn("Binary messages not supported")
			continue
		}

		in, ok, err := parseMessage(message)
		if err != nil {
			c.logger.Debug("Ignoring client message", zap.Error(err))
			continue
		}
		if ok && !c.deliver(ctx, in) {
			c.logger.Warn("View inbox full, dropping input")
		}
	}
}

// writePump pumps view outputs to the WebSocket connection
func (c *Client) writePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("Failed to write message", zap.Error(err))
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Failed to send ping", zap.Error(err))
				c.cancel()
				return
			}
		}
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// Profile returns the browser profile the client belongs to.
func (c *Client) Profile() string { return c.profile }
