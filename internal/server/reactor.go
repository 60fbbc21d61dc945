package server

import (
	"net"
	"runtime"

	"github.com/frjnn/wordquizzle/internal/wqnet"
)

// Reactor is the epoll event loop plus the worker pool that drains it,
// grounded on the teacher's Reactor (reactor.go) — generalized from
// WebSocket frame dispatch to WordQuizzle's opcode-framed control protocol,
// and from the teacher's CAS-based TryAcquire/Release handoff to the
// Disable/Rearm armed-bit model wqnet.Epoll exposes.
type Reactor struct {
	listener *net.TCPListener
	epoll    *wqnet.Epoll
	ctx      *Context

	numWorkers int
}

// NewReactor builds a Reactor. numWorkers mirrors spec.md §4.2's bounded
// worker pool; the caller is responsible for sizing it
// ≥ simultaneously-possible MatchTasks + 2.
func NewReactor(listener *net.TCPListener, epoll *wqnet.Epoll, ctx *Context, numWorkers int) *Reactor {
	if numWorkers < 4 {
		numWorkers = 4
	}
	return &Reactor{listener: listener, epoll: epoll, ctx: ctx, numWorkers: numWorkers}
}

// Run starts the accept loop and the epoll event loop. Blocks forever.
func (r *Reactor) Run() {
	workCh := make(chan *Session, r.numWorkers*128)
	for i := 0; i < r.numWorkers; i++ {
		go r.worker(workCh)
	}

	go r.acceptLoop()

	r.ctx.Log.WithField("workers", r.numWorkers).Info("reactor started")

	for {
		conns, err := r.epoll.Wait()
		if err != nil {
			r.ctx.Log.WithError(err).Error("epoll.Wait failed")
			continue
		}
		for _, c := range conns {
			if c.IsClosed() {
				r.epoll.Remove(c)
				continue
			}
			sess, ok := r.ctx.Sessions.Get(c.Fd())
			if !ok {
				r.epoll.Remove(c)
				continue
			}
			// Disable further read interest for this connection until the
			// dispatched task (or the Mailman, on its behalf) re-arms it —
			// spec.md §4.1's per-connection serialization contract.
			r.epoll.Disable(c)
			select {
			case workCh <- sess:
			default:
				// Worker pool saturated: put the bit back so the next Wait
				// picks this connection up again instead of starving it.
				r.ctx.Stats.WorkerSaturated()
				r.ctx.Log.Warn("worker pool saturated, deferring dispatch")
				r.epoll.Rearm(c)
			}
		}
	}
}

func (r *Reactor) worker(ch <-chan *Session) {
	for sess := range ch {
		r.handleSession(sess)
	}
}

// handleSession drains whatever is currently readable off sess's socket,
// decodes as many complete frames as arrived in this read, and dispatches
// each in turn. A trailing partial frame is kept on the Session and
// prepended to the next read. Legacy clients never append a trailing "\n"
// at all (spec.md §4.5) and instead rely on exactly one frame arriving per
// reactor wake; when no newline-terminated frame was found but a wake did
// deliver bytes, the whole accumulated buffer is decoded as that one frame
// rather than held back waiting for a newline that will never come.
func (r *Reactor) handleSession(sess *Session) {
	if sess.Conn.IsClosed() {
		return
	}

	data, peerClosed, err := sess.Conn.ReadAvailable()
	if peerClosed {
		r.ctx.LogoutTask(sess, true)
		return
	}
	if err != nil {
		r.ctx.Log.WithError(err).Warn("reactor: read error")
	}

	buf := append(sess.pending, data...)
	frames, rest := splitFrames(buf)
	sess.pending = rest

	if len(frames) == 0 {
		if len(rest) == 0 {
			r.epoll.Rearm(sess.Conn)
			return
		}
		frames = []string{string(rest)}
		sess.pending = nil
	}

	for _, frame := range frames {
		if sess.Conn.IsClosed() {
			return
		}
		req, err := DecodeFrame(frame)
		if err != nil {
			r.ctx.reply(sess, "Error: malformed request.\n")
			continue
		}
		sess.MarkTaskInFlight()
		r.dispatch(sess, req)
		sess.ClearTaskInFlight()
	}
}

func (r *Reactor) dispatch(sess *Session, req Request) {
	switch req.Op {
	case OpLogin:
		r.ctx.LoginTask(sess, req.Args[0], req.Args[1], req.Args[2])
	case OpLogout:
		if !r.requireLogin(sess) {
			return
		}
		r.ctx.LogoutTask(sess, false)
	case OpAddFriend:
		if !r.requireLogin(sess) {
			return
		}
		r.ctx.AddFriendTask(sess, req.Args[0])
	case OpFriendList:
		if !r.requireLogin(sess) {
			return
		}
		r.ctx.GetFriendListTask(sess)
	case OpScore:
		if !r.requireLogin(sess) {
			return
		}
		r.ctx.GetScoreTask(sess)
	case OpScoreboard:
		if !r.requireLogin(sess) {
			return
		}
		r.ctx.GetScoreboardTask(sess)
	case OpMatch:
		if !r.requireLogin(sess) {
			return
		}
		r.ctx.MatchTask(sess, req.Args[0])
	}
}

func (r *Reactor) requireLogin(sess *Session) bool {
	if sess.LoggedInAs() == "" {
		r.ctx.reply(sess, "Error: you are not logged in.\n")
		return false
	}
	return true
}

// acceptLoop accepts new TCP connections, wraps each in a Session, and
// registers it with the epoll instance and the session registry.
func (r *Reactor) acceptLoop() {
	for {
		netConn, err := r.listener.Accept()
		if err != nil {
			r.ctx.Log.WithError(err).Error("accept failed")
			continue
		}
		if tc, ok := netConn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}

		conn := wqnet.NewConn(netConn, wqnet.DefaultBufferSize)
		sess := NewSession(conn)
		r.ctx.Sessions.Put(sess)

		if err := r.epoll.Add(conn); err != nil {
			r.ctx.Log.WithError(err).Warn("epoll.Add failed")
			r.ctx.Sessions.Remove(conn.Fd())
			conn.Close()
			continue
		}
	}
}

// DefaultNumWorkers mirrors the teacher's runtime.GOMAXPROCS(0)*2 heuristic,
// floored at spec.md §4.2's minimum of 4.
func DefaultNumWorkers() int {
	n := runtime.GOMAXPROCS(0) * 2
	if n < 4 {
		n = 4
	}
	return n
}
