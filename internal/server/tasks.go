package server

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/frjnn/wordquizzle/internal/match"
	"github.com/frjnn/wordquizzle/internal/presence"
)

// reply enqueues msg (a single already-newline-terminated line) for session
// via the depot, the one path every task but brutal logout and MatchTask uses
// to talk back to a client; MatchTask writes directly both to the
// challenger's primary connection (writeDirect/replyDirect) and to its match
// connections (spec.md §4.4 "Tasks never
// read or write the connection directly except MatchTask... and
// LogoutTask-brutal").
func (ctx *Context) reply(sess *Session, msg string) {
	ctx.Depot <- Mail{Session: sess, Payload: []byte(msg)}
}

// LoginTask authenticates sess against the user store and, on success,
// records it in Presence, grounded verbatim on LoginTask.java's ordered
// checks and literal error strings.
func (ctx *Context) LoginTask(sess *Session, nickname, password, udpPortArg string) {
	if ctx.Store.Get(nickname) == nil {
		ctx.reply(sess, fmt.Sprintf("Login error: user %s not found. Please register.\n", nickname))
		return
	}

	clientPort := sess.Conn.RemotePort()
	if ctx.Presence.IsOnline(nickname) {
		ctx.reply(sess, fmt.Sprintf("Login error: %s is already logged in.\n", nickname))
		return
	}
	if _, alreadyBound := ctx.Presence.NicknameFor(clientPort); alreadyBound {
		ctx.reply(sess, "Login error: you are already logged with another account.\n")
		return
	}

	if !ctx.Store.CheckPassword(nickname, password) {
		ctx.reply(sess, "Login error: wrong password.\n")
		return
	}

	udpPort, err := strconv.Atoi(udpPortArg)
	if err != nil {
		ctx.reply(sess, fmt.Sprintf("Login error: invalid UDP port %q.\n", udpPortArg))
		return
	}

	remote := sess.Conn.RemoteAddr()
	addr := &net.UDPAddr{IP: remote.IP, Port: udpPort}

	switch ctx.Presence.Login(clientPort, nickname, addr) {
	case presence.LoginAlreadyLoggedIn:
		ctx.reply(sess, fmt.Sprintf("Login error: %s is already logged in.\n", nickname))
	case presence.LoginPortInUse:
		ctx.reply(sess, "Login error: you are already logged with another account.\n")
	default:
		sess.SetLogin(nickname, udpPort)
		ctx.Log.WithField("nickname", nickname).Info("user logged in")
		ctx.reply(sess, "Login successful.\n")
	}
}

// LogoutTask implements both the graceful and brutal logout paths (spec.md
// §4.4.2). Graceful replies through the depot with the sentinel payload the
// Mailman recognizes and closes the connection on; brutal cleans up state
// and closes the connection directly, bypassing the Mailman entirely.
func (ctx *Context) LogoutTask(sess *Session, brutal bool) {
	nickname := ctx.Presence.Logout(sess.Conn.RemotePort())

	if brutal {
		if nickname != "" {
			ctx.Log.WithField("nickname", nickname).Warn("brutal logout: peer disconnected")
		}
		ctx.Epoll.Remove(sess.Conn)
		ctx.Sessions.Remove(sess.Conn.Fd())
		sess.Conn.Close()
		return
	}

	if nickname != "" {
		ctx.Log.WithField("nickname", nickname).Info("user logged out")
	}
	ctx.reply(sess, LogoutSuccessPayload)
}

// AddFriendTask grounds on AddFriendTask.java's ordered checks and literal
// messages.
func (ctx *Context) AddFriendTask(sess *Session, friend string) {
	nickname := sess.LoggedInAs()
	if ctx.Store.Get(friend) == nil {
		ctx.reply(sess, fmt.Sprintf("Add friend error: user %s not found.\n", friend))
		return
	}
	if nickname == friend {
		ctx.reply(sess, "Add friend error: you cannot add yourself as a friend.\n")
		return
	}
	added, err := ctx.Store.AddFriend(nickname, friend)
	if err != nil {
		ctx.Log.WithError(err).Warn("add friend: snapshot failed")
	}
	if !added {
		ctx.reply(sess, fmt.Sprintf("Add friend error: you and %s are already friends.\n", friend))
		return
	}
	ctx.reply(sess, friend+" is now your friend.\n")
}

// GetFriendListTask grounds on GetFriendListTask.java, normalized per
// spec.md §9(ii): always end with "\n", never a dangling trailing space.
func (ctx *Context) GetFriendListTask(sess *Session) {
	friends := ctx.Store.Friends(sess.LoggedInAs())
	if len(friends) == 0 {
		ctx.reply(sess, "You currently have no friends, add some!\n")
		return
	}
	msg := "Your friends are:"
	for _, f := range friends {
		msg += " " + f
	}
	ctx.reply(sess, msg+"\n")
}

// GetScoreTask grounds on GetScoreTask.java.
func (ctx *Context) GetScoreTask(sess *Session) {
	nickname := sess.LoggedInAs()
	u := ctx.Store.Get(nickname)
	ctx.reply(sess, fmt.Sprintf("%s, your score is: %d\n", nickname, u.Score))
}

// GetScoreboardTask grounds on GetScoreboardTask.java's "<nick> <score> "
// pair-per-entry line.
func (ctx *Context) GetScoreboardTask(sess *Session) {
	board := ctx.Store.Scoreboard(sess.LoggedInAs())
	msg := ""
	for _, u := range board {
		msg += fmt.Sprintf("%s %d ", u.Nickname, u.Score)
	}
	ctx.reply(sess, msg+"\n")
}

// MatchTask implements the full invitation->join->play->score pipeline
// (spec.md §4.4.7). It runs on a worker goroutine for its entire lifetime,
// including the match itself, matching the original's single Runnable
// occupying one thread for the whole state machine. Unlike every other
// task, MatchTask re-arms the challenger's primary connection itself at
// every terminal state rather than going through the Mailman for the
// in-progress states — spec.md §9 open question (i) resolves the source's
// racy re-arm-from-worker-thread behavior by making re-arm exclusive to
// the Mailman or to MatchTask for its own connection.
func (ctx *Context) MatchTask(sess *Session, friend string) {
	nickname := sess.LoggedInAs()

	if nickname == friend {
		ctx.replyDirect(sess, "Match error: you cannot challenge yourself.\n")
		return
	}
	if !ctx.Store.Get(nickname).HasFriend(friend) {
		ctx.replyDirect(sess, fmt.Sprintf("Match error: user %s and you are not friends.\n", friend))
		return
	}
	if !ctx.Presence.IsOnline(friend) {
		ctx.replyDirect(sess, fmt.Sprintf("Match error: %s is offline\n", friend))
		return
	}

	friendAddr, ok := ctx.Presence.InviteAddr(friend)
	if !ok {
		ctx.replyDirect(sess, fmt.Sprintf("Match error: %s is offline\n", friend))
		return
	}

	invitation, err := match.Invite(nickname, friend, friendAddr, ctx.MatchConfig)
	if err != nil {
		ctx.Log.WithError(err).Error("match: invitation failed")
		ctx.replyDirect(sess, fmt.Sprintf("Match error: could not invite %s.\n", friend))
		return
	}

	switch invitation.Outcome {
	case match.InviteTimedOut:
		ctx.replyDirect(sess, fmt.Sprintf("Match error: invitation to %s timed out.\n", friend))
		return
	case match.InviteRefused:
		ctx.replyDirect(sess, fmt.Sprintf("%s refused your match invitation.\n", friend))
		return
	}

	ctx.writeDirect(sess, fmt.Sprintf("%s accepted your match invitation./%d\n", friend, invitation.Port))

	ctx.Stats.MatchStarted()
	defer ctx.Stats.MatchEnded()

	if _, err := match.Run(context.Background(), invitation.Listener, nickname, friend, ctx.MatchConfig, match.Deps{
		Dictionary: ctx.Dictionary,
		Translator: ctx.Translator,
		Store:      ctx.Store,
		Presence:   ctx.Presence,
		Log:        ctx.Log,
	}); err != nil {
		ctx.Log.WithError(err).Error("match: run failed")
	}

	ctx.Epoll.Rearm(sess.Conn)
}

// writeDirect writes straight to sess's connection without touching its
// armed state — used for the challenger's "accepted" notification, sent
// mid-match while the connection must stay disarmed until MatchTask's own
// final Rearm.
func (ctx *Context) writeDirect(sess *Session, msg string) {
	if err := sess.Conn.Write([]byte(msg)); err != nil {
		ctx.Log.WithError(err).Warn("match: direct write failed")
	}
}

// replyDirect writes straight to sess's connection, bypassing the depot,
// and immediately re-arms it — used by MatchTask's early terminal states
// (self-challenge, not-friends, offline, refused, timed out), which end
// the task without ever entering Play.
func (ctx *Context) replyDirect(sess *Session, msg string) {
	ctx.writeDirect(sess, msg)
	ctx.Epoll.Rearm(sess.Conn)
}
