package socket

import (
	"net/http"

	"github.com/gorilla/websocket"
)

type (
	// Upgrader turns http requests into websocket connections.
	Upgrader interface {
		Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
	}

	// gorillaUpgrader implements the Upgrader interface by wrapping a gorilla/websocket upgrader.
	gorillaUpgrader struct {
		*websocket.Upgrader
	}

	// gorillaConn implements the Conn interface by wrapping a gorilla/websocket connection.
	gorillaConn struct {
		*websocket.Conn
	}
)

// NewGorillaUpgrader returns an upgrader that creates gorilla websocket connections.
func NewGorillaUpgrader() Upgrader {
	u := new(websocket.Upgrader)
	return &gorillaUpgrader{u}
}

// Upgrade creates a Conn from the http request.
func (u *gorillaUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &gorillaConn{c}, nil
}

// WritePing writes a ping message on the connection.
func (c *gorillaConn) WritePing() error {
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}

// WriteClose writes a close message on the connection.  The connection is NOT closed.
func (c *gorillaConn) WriteClose(reason string) error {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	return c.Conn.WriteMessage(websocket.CloseMessage, data)
}

// IsUnexpectedCloseError determines if the error is an unexpected close error.
func (*gorillaConn) IsUnexpectedCloseError(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
