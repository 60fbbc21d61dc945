package presence

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func udpAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: port}
}

func TestLoginBijection(t *testing.T) {
	p := New()

	assert.Equal(t, LoginOK, p.Login(1000, "alice", udpAddr(40000)))

	nick, ok := p.NicknameFor(1000)
	assert.True(t, ok)
	assert.Equal(t, "alice", nick)

	addr, ok := p.InviteAddr("alice")
	assert.True(t, ok)
	assert.Equal(t, 40000, addr.Port)
	assert.True(t, p.IsOnline("alice"))
}

func TestLoginRejectsDuplicateNickname(t *testing.T) {
	p := New()
	_ = p.Login(1000, "alice", udpAddr(40000))
	assert.Equal(t, LoginAlreadyLoggedIn, p.Login(2000, "alice", udpAddr(40001)))
}

func TestLoginRejectsPortAlreadyBound(t *testing.T) {
	p := New()
	_ = p.Login(1000, "alice", udpAddr(40000))
	assert.Equal(t, LoginPortInUse, p.Login(1000, "bob", udpAddr(40001)))
}

func TestLogoutIsIdempotentAndAtomic(t *testing.T) {
	p := New()
	_ = p.Login(1000, "alice", udpAddr(40000))

	nick := p.Logout(1000)
	assert.Equal(t, "alice", nick)
	assert.False(t, p.IsOnline("alice"))
	_, ok := p.InviteAddr("alice")
	assert.False(t, ok, "MatchBook entry must be removed together with OnlineUsers")

	assert.Equal(t, "", p.Logout(1000), "logging out an absent port must be a no-op")
}

func TestCount(t *testing.T) {
	p := New()
	_ = p.Login(1000, "alice", udpAddr(40000))
	_ = p.Login(2000, "bob", udpAddr(40001))
	assert.Equal(t, 2, p.Count())
	p.Logout(1000)
	assert.Equal(t, 1, p.Count())
}
