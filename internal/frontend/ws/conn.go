// Package ws provides the websocket endpoint players connect through.
package ws

import (
	"context"

	"nhooyr.io/websocket"
)

// Conn adapts a websocket connection to the gameserver.Conn interface.
type Conn struct {
	conn       *websocket.Conn
	remoteAddr string
}

// NewConn wraps a websocket connection with its remote address for logging.
func NewConn(conn *websocket.Conn, addr string) *Conn {
	return &Conn{conn: conn, remoteAddr: addr}
}

// Read reads a single inbound frame.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// Send writes a single text frame. Envelopes are JSON, so frames are text.
func (c *Conn) Send(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close closes the connection with a normal closure status.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// RemoteAddr returns the remote address for logging.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}
