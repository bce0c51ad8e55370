// Package socket handles communication with a player using a websocket connection.
package socket

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/fanout-games/arcade/game"
	"github.com/fanout-games/arcade/game/message"
	"github.com/fanout-games/arcade/server/log"
)

type (
	// Socket reads and writes messages to one player's browser.
	Socket struct {
		conn     Conn
		playerID game.PlayerID
		active   bool
		Config
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug is a flag that causes the socket to log the events of messages that are read/written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// TimeFunc is a function which should supply the current time since the unix epoch.
		// Used to set ping/pong deadlines.
		TimeFunc func() int64
		// PongPeriod is the amount of time that can pass between receiving client messages before timing out.
		PongPeriod time.Duration
		// PingPeriod is how often ping messages should be sent.  Should be less than PongPeriod.
		PingPeriod time.Duration
		// IdlePeriod is the amount of time that can pass between handling messages that are not pings
		// before the connection is idle and will be disconnected.
		IdlePeriod time.Duration
	}

	// Conn is the connection that backs the socket.
	Conn interface {
		// ReadJSON reads the next json message from the connection.
		ReadJSON(v interface{}) error
		// WriteJSON writes the message as json to the connection.
		WriteJSON(v interface{}) error
		// SetReadDeadline sets how long a read can block.
		SetReadDeadline(t time.Time) error
		// SetWriteDeadline sets how long a write can block.
		SetWriteDeadline(t time.Time) error
		// SetPongHandler registers the func to call when the connection receives a pong response to an earlier ping.
		SetPongHandler(h func(appData string) error)
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection.  The connection is NOT closed.
		WriteClose(reason string) error
		// IsUnexpectedCloseError determines if the error is an unexpected close error.
		IsUnexpectedCloseError(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
		// Close closes the connection.
		Close() error
	}
)

var errSocketClosed = fmt.Errorf("socket closed")

// NewSocket creates a socket for the player on the connection.
func (cfg Config) NewSocket(conn Conn, playerID game.PlayerID) (*Socket, error) {
	if err := cfg.validate(conn, playerID); err != nil {
		return nil, fmt.Errorf("creating socket: validation: %w", err)
	}
	s := Socket{
		conn:     conn,
		playerID: playerID,
		Config:   cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(conn Conn, playerID game.PlayerID) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case conn == nil:
		return fmt.Errorf("websocket connection required")
	case len(playerID) == 0:
		return fmt.Errorf("player id required")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.PongPeriod <= 0:
		return fmt.Errorf("positive pong period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.IdlePeriod <= 0:
		return fmt.Errorf("positive idle period required")
	case cfg.PingPeriod >= cfg.PongPeriod:
		return fmt.Errorf("ping period must be less than pong period")
	}
	return nil
}

// PlayerID identifies the player the socket belongs to.
func (s *Socket) PlayerID() game.PlayerID {
	return s.playerID
}

// Addr is the remote network address of the connection.
func (s *Socket) Addr() string {
	return s.conn.RemoteAddr().String()
}

// Run reads and writes messages on separate goroutines until the connection
// fails for an unexpected reason or the context is cancelled.  Messages the
// socket receives are sent to the readMessages channel; messages to send are
// consumed from the writeMessages channel.  When the socket stops,
// removeSocketFunc is called so its owner can clean up.
func (s *Socket) Run(ctx context.Context, removeSocketFunc context.CancelFunc, readMessages chan<- message.Message, writeMessages <-chan message.Message) {
	readCtx, readCancelFunc := context.WithCancel(ctx)
	writeCtx, writeCancelFunc := context.WithCancel(ctx)
	go s.readMessages(readCtx, removeSocketFunc, writeCancelFunc, readMessages)
	s.writeMessages(writeCtx, readCancelFunc, writeMessages)
}

// readMessages receives messages from the connected socket and writes them to the messages channel.
// Reading stops when the context is cancelled or the connection errors.
func (s *Socket) readMessages(ctx context.Context, removeSocketFunc, writeCancelFunc context.CancelFunc, messages chan<- message.Message) {
	defer func() {
		removeSocketFunc()
		writeCancelFunc()
		s.conn.Close()
	}()
	s.conn.SetPongHandler(s.refreshReadDeadline)
	for { // BLOCKING
		m, err := s.readMessage()
		select {
		case <-ctx.Done():
			return
		default:
			if err != nil {
				if err != errSocketClosed {
					s.Log.Printf("reading socket messages stopped for player %v: %v", s.playerID, err)
				}
				return
			}
		}
		messages <- *m
		s.active = true
	}
}

// writeMessages sends messages added to the messages channel to the connected socket.
// Writing stops when the context is cancelled or the connection errors.
func (s *Socket) writeMessages(ctx context.Context, readCancelFunc context.CancelFunc, messages <-chan message.Message) {
	pingTicker := time.NewTicker(s.PingPeriod)
	idleTicker := time.NewTicker(s.IdlePeriod)
	defer func() {
		pingTicker.Stop()
		idleTicker.Stop()
		readCancelFunc()
	}()
	var err error
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return
		case m := <-messages:
			err = s.writeMessage(m)
		case <-pingTicker.C:
			err = s.writePing()
		case <-idleTicker.C:
			if !s.active {
				s.conn.WriteClose("closing socket due to inactivity")
				return
			}
			s.active = false
		}
		if err != nil {
			s.Log.Printf("writing socket messages stopped for player %v: %v", s.playerID, err)
			return
		}
	}
}

// readMessage reads the next message from the connection, stamping it with the
// player the connection was authenticated as.
func (s *Socket) readMessage() (*message.Message, error) {
	var m message.Message
	if err := s.conn.ReadJSON(&m); err != nil { // BLOCKING
		if s.conn.IsUnexpectedCloseError(err) {
			return nil, fmt.Errorf("unexpected socket closure: %v", err)
		}
		return nil, errSocketClosed
	}
	if s.Debug {
		s.Log.Printf("socket reading message with event %v", m.Event)
	}
	m.PlayerID = s.playerID
	return &m, nil
}

// writeMessage writes a message to the connection.
func (s *Socket) writeMessage(m message.Message) error {
	if s.Debug {
		s.Log.Printf("socket writing message with event %v", m.Event)
	}
	if err := s.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("writing socket message: %v", err)
	}
	return nil
}

// writePing refreshes the write deadline and pings the connection.
func (s *Socket) writePing() error {
	if err := s.refreshWriteDeadline(); err != nil {
		return err
	}
	return s.conn.WritePing()
}

func (s *Socket) refreshReadDeadline(appData string) error {
	return s.refreshDeadline(s.conn.SetReadDeadline, s.PongPeriod)
}

func (s *Socket) refreshWriteDeadline() error {
	return s.refreshDeadline(s.conn.SetWriteDeadline, s.PingPeriod)
}

func (s *Socket) refreshDeadline(refreshDeadlineFunc func(t time.Time) error, period time.Duration) error {
	now := s.TimeFunc()
	deadline := time.Unix(now, 0).Add(period)
	if err := refreshDeadlineFunc(deadline); err != nil {
		err = fmt.Errorf("refreshing ping/pong deadline: %w", err)
		s.Log.Printf("%v", err)
		return err
	}
	return nil
}
