//go:build linux

package wqnet

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopbackPair(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var serverSide net.Conn
	accepted := make(chan struct{})
	go func() {
		serverSide, _ = ln.Accept()
		close(accepted)
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	<-accepted

	return NewConn(serverSide, 0), client
}

func TestConnWriteAndReadAvailable(t *testing.T) {
	server, client := loopbackPair(t)
	defer server.Close()

	require.NoError(t, server.Write([]byte("hello\n")))

	buf := make([]byte, 32)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(buf[:n]))

	_, err = client.Write([]byte("ping\n"))
	require.NoError(t, err)

	data, peerClosed, err := server.ReadAvailable()
	require.NoError(t, err)
	assert.False(t, peerClosed)
	assert.Equal(t, "ping\n", string(data))
}

func TestConnReadAvailableDetectsPeerClose(t *testing.T) {
	server, client := loopbackPair(t)
	defer server.Close()

	client.Close()

	_, peerClosed, _ := server.ReadAvailable()
	assert.True(t, peerClosed)
}

func TestConnCloseIsIdempotent(t *testing.T) {
	server, _ := loopbackPair(t)
	server.Close()
	server.Close()
	assert.True(t, server.IsClosed())
}

func TestConnArmedDefaultsTrue(t *testing.T) {
	server, _ := loopbackPair(t)
	defer server.Close()
	assert.True(t, server.armed())
	server.setArmed(false)
	assert.False(t, server.armed())
}
