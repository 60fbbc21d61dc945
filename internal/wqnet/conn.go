package wqnet

import (
	"net"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the default per-connection read buffer, matching the
// original Java server's 512-byte NIO ByteBuffer.
const DefaultBufferSize = 512

// Conn is the minimal per-connection state the reactor multiplexes: a TCP
// socket, its cached file descriptor, a reusable read buffer, and the two
// bits of bookkeeping the epoll loop and the worker pool need to coordinate
// safely — armed (read-interest) and closed.
type Conn struct {
	netConn net.Conn
	fd      int
	remote  *net.TCPAddr

	readBuf []byte

	closed int32 // atomic bool
	ready  int32 // atomic bool: read interest currently armed

	writeMu sync.Mutex
}

// NewConn wraps an accepted net.Conn. The fd is extracted once at creation.
func NewConn(netConn net.Conn, bufSize int) *Conn {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	fd := socketFd(netConn)
	remote, _ := netConn.RemoteAddr().(*net.TCPAddr)
	return &Conn{
		netConn: netConn,
		fd:      fd,
		remote:  remote,
		readBuf: make([]byte, bufSize),
		ready:   1,
	}
}

// Fd returns the cached file descriptor.
func (c *Conn) Fd() int { return c.fd }

// RemoteAddr returns the connection's remote TCP address.
func (c *Conn) RemoteAddr() *net.TCPAddr { return c.remote }

// RemotePort returns the remote ephemeral port, stable for the connection's
// lifetime — this is the key of the OnlineUsers bijection.
func (c *Conn) RemotePort() int {
	if c.remote == nil {
		return 0
	}
	return c.remote.Port
}

func (c *Conn) armed() bool          { return atomic.LoadInt32(&c.ready) != 0 }
func (c *Conn) setArmed(armed bool) {
	if armed {
		atomic.StoreInt32(&c.ready, 1)
	} else {
		atomic.StoreInt32(&c.ready, 0)
	}
}

// IsClosed reports whether the connection has already been closed.
func (c *Conn) IsClosed() bool {
	return atomic.LoadInt32(&c.closed) != 0
}

// Close closes the underlying socket. Safe to call more than once.
func (c *Conn) Close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.netConn.Close()
	}
}

// ReadAvailable performs a single Read into the connection's read buffer and
// returns the bytes read, at most the buffer's size. It does not loop until
// the socket is empty: bytes beyond the buffer's size stay on the socket for
// the next call. It reports peerClosed=true when the Read returns no bytes and
// an error (EOF or any other read error), a crash in WordQuizzle terms.
func (c *Conn) ReadAvailable() (data []byte, peerClosed bool, err error) {
	n, err := c.netConn.Read(c.readBuf)
	if n == 0 && err != nil {
		return nil, true, nil
	}
	if err != nil {
		return c.readBuf[:n], false, err
	}
	return c.readBuf[:n], false, nil
}

// Write performs a blocking drain write: it retries until every byte has been
// written, mirroring the original NIO "while (bBuff.hasRemaining())" loop.
func (c *Conn) Write(p []byte) error {
	if c.IsClosed() {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	for len(p) > 0 {
		n, err := c.netConn.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
