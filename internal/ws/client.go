package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 10 * time.Second

// Client represents a websocket client connection.
type Client struct {
	mu   sync.Mutex
	conn *websocket.Conn
	log  *slog.Logger
}

// NewClient constructs a client wrapper.
func NewClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{conn: conn, log: logger}
}

// Send writes a message to the websocket connection.
func (c *Client) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.log.Warn("websocket send failed", "error", err)
		_ = c.conn.Close()
		return err
	}
	return nil
}

// Close terminates the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
	_ = c.conn.Close()
}

// Drain reads until the peer disconnects. Incoming messages are discarded.
func (c *Client) Drain() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
