//go:build linux

// Package wqnet provides the Linux epoll-based connection primitives that the
// WordQuizzle reactor multiplexes over. It knows nothing about the WordQuizzle
// protocol; it only tracks readable file descriptors and hands back the Conn
// that owns them.
package wqnet

import (
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// Epoll wraps a Linux epoll instance and the set of Conns registered on it.
type Epoll struct {
	fd      int
	connMu  sync.RWMutex
	connMap map[int]*Conn
	events  []unix.EpollEvent
}

// NewEpoll creates a new epoll instance.
func NewEpoll() (*Epoll, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Epoll{
		fd:      fd,
		connMap: make(map[int]*Conn),
		events:  make([]unix.EpollEvent, 256),
	}, nil
}

// Add registers a connection for read interest.
func (e *Epoll) Add(c *Conn) error {
	fd := c.Fd()
	if fd < 0 {
		return unix.EBADF
	}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLHUP | unix.EPOLLERR,
		Fd:     int32(fd),
	}); err != nil {
		return err
	}
	e.connMu.Lock()
	e.connMap[fd] = c
	e.connMu.Unlock()
	return nil
}

// Rearm re-enables read interest for a connection after a task has finished
// consuming its previously readable bytes. Level-triggered epoll would keep
// reporting the fd as ready forever otherwise isn't true here — WordQuizzle
// disables interest with Disable, not EPOLL_CTL_DEL, so Rearm is a no-op on
// the epoll side; it exists to keep the call site symmetrical with Disable.
func (e *Epoll) Rearm(c *Conn) {
	c.setArmed(true)
}

// Disable marks a connection as not ready for dispatch until Rearm is called.
// The fd stays registered with epoll (level-triggered, so it will keep
// showing up in Wait) but Wait filters out disarmed connections.
func (e *Epoll) Disable(c *Conn) {
	c.setArmed(false)
}

// Remove unregisters a connection from epoll and from the connection map.
func (e *Epoll) Remove(c *Conn) {
	fd := c.Fd()
	if fd < 0 {
		return
	}
	unix.EpollCtl(e.fd, unix.EPOLL_CTL_DEL, fd, nil)
	e.connMu.Lock()
	delete(e.connMap, fd)
	e.connMu.Unlock()
}

// Wait blocks until at least one registered fd is ready and returns the armed
// connections among them. The result is empty when only disarmed connections
// were ready, and nil when the wait was interrupted (EINTR).
func (e *Epoll) Wait() ([]*Conn, error) {
	n, err := unix.EpollWait(e.fd, e.events, -1)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}

	conns := make([]*Conn, 0, n)
	e.connMu.RLock()
	for i := 0; i < n; i++ {
		fd := int(e.events[i].Fd)
		if c, ok := e.connMap[fd]; ok && c.armed() {
			conns = append(conns, c)
		}
	}
	e.connMu.RUnlock()
	return conns, nil
}

// Count returns the number of connections currently registered.
func (e *Epoll) Count() int {
	e.connMu.RLock()
	defer e.connMu.RUnlock()
	return len(e.connMap)
}

// Close closes the epoll instance itself (not the registered connections).
func (e *Epoll) Close() error {
	return unix.Close(e.fd)
}

// socketFd extracts the underlying file descriptor of a net.Conn using the
// standard syscall.Conn interface.
func socketFd(conn net.Conn) int {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1
	}
	fd := -1
	raw.Control(func(sysfd uintptr) {
		fd = int(sysfd)
	})
	return fd
}
