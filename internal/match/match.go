// Package match implements the WordQuizzle match session state machine:
// invitation over UDP, a two-player rendezvous TCP listener, the timed
// translation duel, and scoring — grounded on the original Java server's
// MatchTask, generalized from one monolithic Runnable into the Invite/Join/
// Play/Score stages spec.md §4.4.7 names.
package match

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/frjnn/wordquizzle/internal/presence"
	"github.com/frjnn/wordquizzle/internal/store"
	"github.com/frjnn/wordquizzle/internal/words"
)

// Config bundles the server-wide match parameters fixed at startup (the
// three CLI-supplied timers/counts in spec.md §6).
type Config struct {
	MatchDuration  time.Duration
	AcceptDuration time.Duration
	NumWords       int
}

// InviteOutcome tags how an invitation resolved.
type InviteOutcome int

const (
	// InviteAccepted means the challenged user replied "Y".
	InviteAccepted InviteOutcome = iota
	// InviteRefused means the challenged user replied "N".
	InviteRefused
	// InviteTimedOut means no reply arrived within AcceptDuration.
	InviteTimedOut
)

// Invitation is the result of sending a UDP challenge: the listener the
// challenged player must connect to (only valid when Outcome is
// InviteAccepted) and its ephemeral port (sent to both parties).
type Invitation struct {
	Outcome  InviteOutcome
	Listener *net.TCPListener
	Port     int
}

// Invite opens an ephemeral TCP listener and a timed UDP socket, sends the
// challenge "<challenger>/<port>" to challenged's invite address, and blocks
// for a single-byte "Y"/"N" reply or the accept timeout — grounded directly
// on MatchTask's invSocket/matchChannel setup and its
// DatagramSocket.setSoTimeout(acceptTimer*1000) invitation wait.
func Invite(challenger, challenged string, challengedAddr *net.UDPAddr, cfg Config) (*Invitation, error) {
	listener, err := net.ListenTCP("tcp", &net.TCPAddr{Port: 0})
	if err != nil {
		return nil, fmt.Errorf("match: opening rendezvous listener: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port

	udpConn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("match: opening invitation socket: %w", err)
	}
	defer udpConn.Close()

	invitation := []byte(fmt.Sprintf("%s/%d", challenger, port))
	if _, err := udpConn.WriteToUDP(invitation, challengedAddr); err != nil {
		listener.Close()
		return nil, fmt.Errorf("match: sending invitation: %w", err)
	}

	udpConn.SetReadDeadline(time.Now().Add(cfg.AcceptDuration))
	buf := make([]byte, 16)
	n, _, err := udpConn.ReadFromUDP(buf)
	if err != nil {
		// Timeout: tell the challenged client's pending-invite entry to
		// expire too, per spec.md §4.4.7 Invite->TimedOut.
		timeoutMsg := []byte(fmt.Sprintf("TIMEOUT/%s", challenger))
		udpConn.WriteToUDP(timeoutMsg, challengedAddr)
		listener.Close()
		return &Invitation{Outcome: InviteTimedOut}, nil
	}

	response := string(buf[:n])
	if response == "N" {
		listener.Close()
		return &Invitation{Outcome: InviteRefused}, nil
	}
	return &Invitation{Outcome: InviteAccepted, Listener: listener, Port: port}, nil
}

// Deps bundles the shared collaborators Play needs beyond the two players'
// identities: the dictionary to draw words from, the translator to fetch
// acceptable answers, the user store to persist final scores, and a logger.
type Deps struct {
	Dictionary *words.Dictionary
	Translator words.Translator
	Store      *store.UserStore
	Presence   *presence.Presence
	Log        *logrus.Logger
	Rand       *rand.Rand
}

// Result is the outcome of a completed Play stage.
type Result struct {
	ChallengerScore, ChallengedScore     int
	ChallengerMessage, ChallengedMessage string
	Unavailable                          bool
}

// Run waits for both players to join listener, then plays out the full duel
// and returns the final result. ctx bounds the translator fetch only; the
// match's own wall-clock deadline (cfg.MatchDuration) is enforced internally.
func Run(ctx context.Context, listener *net.TCPListener, challenger, challenged string, cfg Config, deps Deps) (*Result, error) {
	defer listener.Close()

	matchID := uuid.New().String()
	log := deps.Log.WithFields(logrus.Fields{
		"match_id":   matchID,
		"challenger": challenger,
		"challenged": challenged,
	})
	log.Info("match started")
	defer log.Info("match ended")

	chalAddr, ok := deps.Presence.InviteAddr(challenger)
	if !ok {
		return nil, fmt.Errorf("match: challenger %s is no longer online", challenger)
	}
	chldAddr, ok := deps.Presence.InviteAddr(challenged)
	if !ok {
		return nil, fmt.Errorf("match: challenged %s is no longer online", challenged)
	}

	chalConn, chldConn, err := awaitJoin(listener, chalAddr.IP, chldAddr.IP)
	if err != nil {
		return nil, err
	}
	defer chalConn.Close()
	defer chldConn.Close()

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	selected := deps.Dictionary.PickN(cfg.NumWords, rng)
	translations, err := deps.Translator.Translate(ctx, selected)
	available := err == nil
	if err != nil {
		log.WithError(err).Warn("translation service unavailable, aborting match without scoring")
	}

	outcome := play(playInput{
		challengerConn: chalConn,
		challengedConn: chldConn,
		challenger:     challenger,
		challenged:     challenged,
		words:          selected,
		translations:   translations,
		available:      available,
		numWords:       cfg.NumWords,
		deadline:       time.Now().Add(cfg.MatchDuration),
	})

	if outcome.unavailable {
		const sorry = "Sorry, the translation service is unavailable. Try later."
		return &Result{Unavailable: true, ChallengerMessage: sorry, ChallengedMessage: sorry}, nil
	}

	chalScore := scoreAnswers(outcome.chalAnswers, outcome.chalIdx, selected, translations)
	chldScore := scoreAnswers(outcome.chldAnswers, outcome.chldIdx, selected, translations)
	chalScore, chldScore = applyBonus(chalScore, chldScore)

	chalMsg, chldMsg := resultMessages(chalScore, chldScore, outcome.timedOut)
	writeFrame(chalConn, "END/"+chalMsg+"\n")
	writeFrame(chldConn, "END/"+chldMsg+"\n")

	if err := deps.Store.SetScore(challenger, chalScore); err != nil {
		log.WithError(err).WithField("nickname", challenger).Error("failed to persist match score")
	}
	if err := deps.Store.SetScore(challenged, chldScore); err != nil {
		log.WithError(err).WithField("nickname", challenged).Error("failed to persist match score")
	}

	return &Result{
		ChallengerScore:   chalScore,
		ChallengedScore:   chldScore,
		ChallengerMessage: chalMsg,
		ChallengedMessage: chldMsg,
	}, nil
}

// awaitJoin accepts exactly two connections on listener and attributes each
// to the challenger or challenged side by comparing its remote IP against
// the addresses recorded in MatchBook, grounded on MatchTask's join loop
// (add1.equals / add2.equals over the matchSelector's accepted sockets).
func awaitJoin(listener *net.TCPListener, challengerIP, challengedIP net.IP) (chal, chld net.Conn, err error) {
	for chal == nil || chld == nil {
		conn, acceptErr := listener.Accept()
		if acceptErr != nil {
			return nil, nil, fmt.Errorf("match: accepting join: %w", acceptErr)
		}
		remoteIP := conn.RemoteAddr().(*net.TCPAddr).IP
		switch {
		case chal == nil && remoteIP.Equal(challengerIP):
			chal = conn
		case chld == nil && remoteIP.Equal(challengedIP):
			chld = conn
		default:
			conn.Close()
		}
	}
	return chal, chld, nil
}

func applyBonus(chalScore, chldScore int) (int, int) {
	const bonus = 3
	switch {
	case chalScore > chldScore:
		return chalScore + bonus, chldScore
	case chldScore > chalScore:
		return chalScore, chldScore + bonus
	default:
		return chalScore, chldScore
	}
}

func resultMessages(chalScore, chldScore int, timedOut bool) (string, string) {
	var chalVerb, chldVerb string
	switch {
	case chalScore > chldScore:
		chalVerb, chldVerb = "won", "lost"
	case chldScore > chalScore:
		chalVerb, chldVerb = "lost", "won"
	default:
		chalVerb, chldVerb = "drew", "drew"
	}
	prefix := ""
	if timedOut {
		prefix = "Time out: "
	}
	chalMsg := fmt.Sprintf("%sYou have scored: %d points. You %s.", prefix, chalScore, chalVerb)
	chldMsg := fmt.Sprintf("%sYou have scored: %d points. You %s.", prefix, chldScore, chldVerb)
	return chalMsg, chldMsg
}
