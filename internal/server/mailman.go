package server

import (
	"github.com/sirupsen/logrus"

	"github.com/frjnn/wordquizzle/internal/wqnet"
)

// Mail is one pending outbound write: a destination session and the bytes a
// task wants written to it, grounded on QuizzleMail.java.
type Mail struct {
	Session *Session
	Payload []byte
}

// Depot is the single-producer(s)/single-consumer FIFO queue tasks enqueue
// into and the Mailman drains, grounded on WQServer's depot BlockingQueue.
// A buffered channel gives FIFO ordering and blocking backpressure for free;
// no custom queue type is needed (see DESIGN.md).
type Depot chan Mail

// NewDepot allocates a depot with the given capacity.
func NewDepot(capacity int) Depot {
	return make(Depot, capacity)
}

// Mailman is the single dedicated consumer that serializes every outbound
// write, per spec.md §4.3 and §9's "depot path is the correct one" design
// note — the direct-write variant the teacher's reactor worker path also
// models (workers writing straight to c.Conn) is deliberately not
// implemented here.
type Mailman struct {
	depot    Depot
	epoll    *wqnet.Epoll
	sessions *SessionRegistry
	log      *logrus.Logger
}

// NewMailman builds a Mailman draining depot and re-arming connections on
// epoll once each mail is flushed.
func NewMailman(depot Depot, epoll *wqnet.Epoll, sessions *SessionRegistry, log *logrus.Logger) *Mailman {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mailman{depot: depot, epoll: epoll, sessions: sessions, log: log}
}

// Run drains the depot until it is closed. Intended to run in its own
// goroutine for the lifetime of the process.
func (m *Mailman) Run() {
	for mail := range m.depot {
		m.deliver(mail)
	}
}

func (m *Mailman) deliver(mail Mail) {
	if err := mail.Session.Conn.Write(mail.Payload); err != nil {
		m.log.WithError(err).WithField("nickname", mail.Session.LoggedInAs()).
			Warn("mailman: write failed, dropping connection")
		m.epoll.Remove(mail.Session.Conn)
		m.sessions.Remove(mail.Session.Conn.Fd())
		mail.Session.Conn.Close()
		return
	}

	if string(mail.Payload) == LogoutSuccessPayload {
		m.epoll.Remove(mail.Session.Conn)
		m.sessions.Remove(mail.Session.Conn.Fd())
		mail.Session.Conn.Close()
		return
	}

	m.epoll.Rearm(mail.Session.Conn)
}
