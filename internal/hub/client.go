package hub

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one live session: the WebSocket connection plus the authenticated
// identity and the room the connection was opened on. RoomID is fixed for the
// session's lifetime; switching rooms requires a new connection.
type Client struct {
	UserID string
	RoomID string
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte

	// sendMu orders trySend against closeSend. Sending on Send after it is
	// closed would panic and take down every session with it.
	sendMu sync.Mutex
	closed bool
}

// readPump reads events from the WebSocket and routes them. Events from one
// session are processed in the order received. Returns when the connection
// closes for any reason.
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}
		c.Hub.route(c, raw)
	}
}

// writePump drains the Send channel into the WebSocket. Separating read and
// write avoids head-of-line blocking when a client is slow.
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// trySend queues a payload without blocking. Returns false when the client's
// buffer is full or the session is already closed.
func (c *Client) trySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the Send channel exactly once, shutting down writePump.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}
