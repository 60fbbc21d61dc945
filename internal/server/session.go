// Package server wires the reactor, the worker pool, the Mailman, and the
// per-command tasks into the running WordQuizzle service, grounded on the
// teacher's reactor/handler/registry/session split in
// signaling-server-go-hp — generalized from one WebSocket signaling
// connection per peer to one opcode-framed control connection per logged-in
// (or not-yet-logged-in) user.
package server

import (
	"sync/atomic"

	"github.com/frjnn/wordquizzle/internal/wqnet"
)

// Session is the server-side state bound to one client TCP connection
// (spec.md §3 "Session (per connection)"). It wraps a *wqnet.Conn with the
// two fields a control connection accrues over its lifetime: the nickname
// it logged in as, and the UDP port that nickname's client listens for
// match invitations on.
type Session struct {
	Conn *wqnet.Conn

	// taskInFlight records whether the reactor currently has a task
	// dispatched against this session, sampled by SessionRegistry.
	// TasksInFlight for the status snapshot — the read-interest
	// serialization itself is carried by wqnet.Epoll's armed bit, so this
	// field is purely observational.
	taskInFlight int32

	loggedInAs    string
	udpInvitePort int

	// pending holds bytes read but not yet forming a complete newline- or
	// zero-terminated frame, carried over to the next read.
	pending []byte
}

// NewSession wraps a freshly accepted connection.
func NewSession(conn *wqnet.Conn) *Session {
	return &Session{Conn: conn}
}

// LoggedInAs returns the nickname this session is authenticated as, or ""
// if it hasn't logged in yet.
func (s *Session) LoggedInAs() string {
	return s.loggedInAs
}

// SetLogin records the nickname and invite port a successful LoginTask
// bound to this session.
func (s *Session) SetLogin(nickname string, udpInvitePort int) {
	s.loggedInAs = nickname
	s.udpInvitePort = udpInvitePort
}

// UDPInvitePort is the port this session's client listens for match
// invitations on, valid only once LoggedInAs() != "".
func (s *Session) UDPInvitePort() int {
	return s.udpInvitePort
}

// MarkTaskInFlight and ClearTaskInFlight record whether a task is currently
// outstanding for this session's connection, read by SessionRegistry.
// TasksInFlight for the status snapshot — the actual read-interest
// serialization lives in wqnet.Epoll.
func (s *Session) MarkTaskInFlight()  { atomic.StoreInt32(&s.taskInFlight, 1) }
func (s *Session) ClearTaskInFlight() { atomic.StoreInt32(&s.taskInFlight, 0) }
func (s *Session) TaskInFlight() bool { return atomic.LoadInt32(&s.taskInFlight) == 1 }
