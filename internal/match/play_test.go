package match

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreAnswers(t *testing.T) {
	selected := []string{"casa", "cane", "gatto"}
	translations := map[string][]string{
		"casa":  {"house"},
		"cane":  {"dog"},
		"gatto": {"cat"},
	}

	// idx = numWords+1 means the player answered (or was marked done for)
	// every word; answers[i] mirrors the word at selected[i].
	answers := []string{"house", "wrong", ""}
	score := scoreAnswers(answers, 4, selected, translations)
	assert.Equal(t, 2-1+0, score)
}

func TestScoreAnswersAllCorrectThreeWords(t *testing.T) {
	selected := []string{"casa", "cane", "gatto"}
	translations := map[string][]string{
		"casa":  {"house"},
		"cane":  {"dog"},
		"gatto": {"cat"},
	}
	answers := []string{"house", "dog", "cat"}
	score := scoreAnswers(answers, 4, selected, translations)
	assert.Equal(t, 6, score)
}

func TestApplyBonus(t *testing.T) {
	chal, chld := applyBonus(3, 6)
	assert.Equal(t, 3, chal)
	assert.Equal(t, 9, chld)

	chal, chld = applyBonus(6, 6)
	assert.Equal(t, 6, chal)
	assert.Equal(t, 6, chld)
}

func TestResultMessages(t *testing.T) {
	chal, chld := resultMessages(3, 9, false)
	assert.Equal(t, "You have scored: 3 points. You lost.", chal)
	assert.Equal(t, "You have scored: 9 points. You won.", chld)

	chal, chld = resultMessages(5, 5, true)
	assert.Equal(t, "Time out: You have scored: 5 points. You drew.", chal)
	assert.Equal(t, "Time out: You have scored: 5 points. You drew.", chld)
}

func TestHandleFrameStartThenAnswerAdvancesIndex(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	go drain(client)

	in := &playInput{
		challengerConn: server,
		numWords:       2,
		words:          []string{"casa", "cane"},
	}
	out := &playOutcome{chalAnswers: make([]string, 2)}

	// START counts as receiving the first word; index becomes 1.
	handleFrame(in, out, frameEvent{who: sideChallenger, isStart: true, body: "START"})
	assert.Equal(t, 1, out.chalIdx)

	handleFrame(in, out, frameEvent{who: sideChallenger, body: "house"})
	assert.Equal(t, 2, out.chalIdx)
	assert.Equal(t, "house", out.chalAnswers[0])
}

func TestHandleFrameCrashZeroFillsRemainder(t *testing.T) {
	in := &playInput{numWords: 3, words: []string{"a", "b", "c"}}
	out := &playOutcome{chalAnswers: []string{"x", "", ""}, chalIdx: 2}

	handleFrame(in, out, frameEvent{who: sideChallenger, crashed: true})

	assert.Equal(t, 4, out.chalIdx, "crash must push the index past numWords")
	assert.Equal(t, []string{"x", "", ""}, out.chalAnswers, "answers given before the crash are kept; the rest are zero-filled")
}

// drain discards everything written to conn until it's closed, standing in
// for the peer side of a net.Pipe so handleFrame's writeFrame calls never
// block.
func drain(conn net.Conn) {
	buf := make([]byte, 256)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}
