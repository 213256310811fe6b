package server

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is how many messages a client may fall behind before the
	// hub drops it
	sendBuffer = 32
)

// Client wraps a HUD WebSocket connection. All writes go through the send
// channel and a single writer goroutine.
type Client struct {
	conn   *websocket.Conn
	remote string

	mu     sync.Mutex // Protects send and closed
	send   chan []byte
	closed bool
}

// NewClient creates a Client from an upgraded WebSocket connection.
func NewClient(conn *websocket.Conn, remote string) *Client {
	return &Client{
		conn:   conn,
		remote: remote,
		send:   make(chan []byte, sendBuffer),
	}
}

// RemoteAddr returns the client address used for connection limits.
func (c *Client) RemoteAddr() string {
	return c.remote
}

// Enqueue queues a message without blocking. It returns false when the
// client is closed or its buffer is full.
func (c *Client) Enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close stops the writer, which then closes the connection. Safe to call
// more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readLoop reads text messages until the connection fails, passing each
// non-blank message to handle.
func (c *Client) readLoop(maxMessageSize int64, handle func([]byte)) {
	if maxMessageSize > 0 {
		c.conn.SetReadLimit(maxMessageSize)
	}
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if strings.TrimSpace(string(message)) == "" {
			continue
		}
		handle(message)
	}
}

// writeLoop drains the send channel and keeps the connection alive with pings.
func (c *Client) writeLoop() {
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
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
