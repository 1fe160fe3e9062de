// Package network backs the 소켓_열기 built-in, a client-only websocket
// connection. Grounded on the teacher's internal/network/websocket.go
// (same gorilla/websocket dialer, same 10s handshake timeout) but trimmed
// to what 소켓_열기 needs: a script dials out and sends/receives text
// frames, it never accepts inbound connections, so the teacher's
// WebSocketServer/Upgrader/Clients machinery has no SPEC_FULL.md
// component to serve and is not carried over.
package network

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn is an open client-side websocket connection.
type Conn struct {
	URL  string
	conn *websocket.Conn
}

// Dial opens a websocket connection to url.
func Dial(url string) (*Conn, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	c, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{URL: url, conn: c}, nil
}

// Send writes msg as a text frame.
func (c *Conn) Send(msg string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// Receive blocks for the next text frame and returns its payload.
func (c *Conn) Receive() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}
