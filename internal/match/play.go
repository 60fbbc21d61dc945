package match

import (
	"net"
	"strings"
	"time"
)

// playInput bundles everything the Play loop needs once both connections
// have joined.
type playInput struct {
	challengerConn, challengedConn net.Conn
	challenger, challenged         string
	words                          []string
	translations                   map[string][]string
	available                      bool
	numWords                       int
	deadline                       time.Time
}

// playOutcome is the raw per-player state the Play loop produced, before
// scoring.
type playOutcome struct {
	chalAnswers, chldAnswers []string
	chalIdx, chldIdx         int
	timedOut                 bool
	unavailable               bool
}

// side identifies which player a frame event belongs to.
type side int

const (
	sideChallenger side = iota
	sideChallenged
)

// frameEvent is one parsed match-channel frame, or a crash notification, read
// off either connection by its dedicated reader goroutine.
type frameEvent struct {
	who     side
	crashed bool
	isStart bool
	body    string
}

// play runs the translation duel proper: it multiplexes frames from both
// connections over a channel (the Go equivalent of MatchTask's nested
// matchSelector.selectNow() loop — two reader goroutines in place of one
// non-blocking selector, since there are only ever two peers to watch), sends
// the next word in response to each, and exits on deadline or dual
// completion. When the translator is unavailable it instead sends each player
// the terminal "Sorry" frame once; the END frames of a scored match are
// written by Run.
func play(in playInput) playOutcome {
	out := playOutcome{
		chalAnswers: make([]string, in.numWords),
		chldAnswers: make([]string, in.numWords),
	}

	events := make(chan frameEvent, 8)
	go readFrames(in.challengerConn, sideChallenger, events)
	go readFrames(in.challengedConn, sideChallenged, events)

	if !in.available {
		terminated := map[side]bool{}
		const sorry = "END/Sorry, the translation service is unavailable. Try later.\n"
		for !terminated[sideChallenger] || !terminated[sideChallenged] {
			ev, ok := <-events
			if !ok {
				break
			}
			if terminated[ev.who] {
				continue
			}
			terminated[ev.who] = true
			writeFrame(connFor(in, ev.who), sorry)
		}
		out.unavailable = true
		return out
	}

	timer := time.NewTimer(time.Until(in.deadline))
	defer timer.Stop()

	for (out.chalIdx <= in.numWords || out.chldIdx <= in.numWords) && !out.timedOut {
		select {
		case <-timer.C:
			out.timedOut = true
		case ev := <-events:
			handleFrame(&in, &out, ev)
		}
	}
	return out
}

func connFor(in playInput, who side) net.Conn {
	if who == sideChallenger {
		return in.challengerConn
	}
	return in.challengedConn
}

// readFrames continuously reads one frame per Read call off conn — matching
// the original readMsg's "read until a zero-length read" per-event framing —
// and forwards it as a frameEvent. It exits (closing nothing; the caller owns
// conn) once the peer disconnects.
func readFrames(conn net.Conn, who side, events chan<- frameEvent) {
	buf := make([]byte, 256)
	for {
		n, err := conn.Read(buf)
		if n == 0 && err != nil {
			events <- frameEvent{who: who, crashed: true}
			return
		}
		frame := strings.TrimRight(string(buf[:n]), "\x00\n\r")
		if frame == "" {
			continue
		}
		idx := strings.LastIndex(frame, "/")
		var body, tag string
		if idx >= 0 {
			body, tag = frame[:idx], frame[idx+1:]
		} else {
			body, tag = frame, ""
		}
		events <- frameEvent{who: who, isStart: body == "START", body: body, crashed: false}
		_ = tag // nickname is implied by which physical connection sent it; kept for protocol fidelity only
	}
}

func handleFrame(in *playInput, out *playOutcome, ev frameEvent) {
	var idx *int
	var answers []string
	var conn net.Conn
	switch ev.who {
	case sideChallenger:
		idx, answers, conn = &out.chalIdx, out.chalAnswers, in.challengerConn
	case sideChallenged:
		idx, answers, conn = &out.chldIdx, out.chldAnswers, in.challengedConn
	}

	if ev.crashed {
		start := *idx - 1
		if start < 0 {
			start = 0
		}
		for i := start; i < in.numWords; i++ {
			answers[i] = ""
		}
		*idx = in.numWords + 1
		return
	}

	if ev.isStart {
		if *idx < in.numWords {
			writeFrame(conn, in.words[*idx]+"\n")
		}
		*idx++
		return
	}

	// A plain answer frame: it answers the word most recently sent to this
	// player, at position idx-1.
	if *idx-1 >= 0 && *idx-1 < in.numWords {
		answers[*idx-1] = ev.body
	}
	if *idx < in.numWords {
		writeFrame(conn, in.words[*idx]+"\n")
	}
	*idx++
}

func writeFrame(conn net.Conn, s string) {
	data := []byte(s)
	for len(data) > 0 {
		n, err := conn.Write(data)
		if err != nil {
			return
		}
		data = data[n:]
	}
}

// scoreAnswers tallies a single player's score over however many words they
// actually answered (idx-1 of them — idx runs one past the last answered
// word, matching MatchTask's "index - 1" scoring bound).
func scoreAnswers(answers []string, idx int, selected []string, translations map[string][]string) int {
	answered := idx - 1
	if answered > len(selected) {
		answered = len(selected)
	}
	score := 0
	for i := 0; i < answered; i++ {
		acceptable := translations[selected[i]]
		answer := answers[i]
		switch {
		case answer == "":
			// no points for a skipped word
		case contains(acceptable, answer):
			score += 2
		default:
			score--
		}
	}
	return score
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
