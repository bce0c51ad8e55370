package socket

import (
	"net"
	"time"
)

// mockAddr implements the net.Addr interface
type mockAddr string

func (m mockAddr) Network() string {
	return string(m) + "_NETWORK"
}

func (m mockAddr) String() string {
	return string(m)
}

type mockConn struct {
	ReadJSONFunc               func(v interface{}) error
	WriteJSONFunc              func(v interface{}) error
	SetReadDeadlineFunc        func(t time.Time) error
	SetWriteDeadlineFunc       func(t time.Time) error
	SetPongHandlerFunc         func(h func(appData string) error)
	WritePingFunc              func() error
	WriteCloseFunc             func(reason string) error
	IsUnexpectedCloseErrorFunc func(err error) bool
	RemoteAddrFunc             func() net.Addr
	CloseFunc                  func() error
}

func (m *mockConn) ReadJSON(v interface{}) error {
	return m.ReadJSONFunc(v)
}

func (m *mockConn) WriteJSON(v interface{}) error {
	return m.WriteJSONFunc(v)
}

func (m *mockConn) SetReadDeadline(t time.Time) error {
	return m.SetReadDeadlineFunc(t)
}

func (m *mockConn) SetWriteDeadline(t time.Time) error {
	return m.SetWriteDeadlineFunc(t)
}

func (m *mockConn) SetPongHandler(h func(appData string) error) {
	m.SetPongHandlerFunc(h)
}

func (m *mockConn) WritePing() error {
	return m.WritePingFunc()
}

func (m *mockConn) WriteClose(reason string) error {
	return m.WriteCloseFunc(reason)
}

func (m *mockConn) IsUnexpectedCloseError(err error) bool {
	return m.IsUnexpectedCloseErrorFunc(err)
}

func (m *mockConn) RemoteAddr() net.Addr {
	return m.RemoteAddrFunc()
}

func (m *mockConn) Close() error {
	return m.CloseFunc()
}
