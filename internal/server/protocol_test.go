package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFrameLogin(t *testing.T) {
	req, err := DecodeFrame("0 alice secret 40000")
	require.NoError(t, err)
	assert.Equal(t, OpLogin, req.Op)
	assert.Equal(t, []string{"alice", "secret", "40000"}, req.Args)
}

func TestDecodeFrameNoArgOpcodes(t *testing.T) {
	for _, frame := range []string{"1", "3", "4", "5"} {
		req, err := DecodeFrame(frame)
		require.NoError(t, err, frame)
		assert.Empty(t, req.Args)
	}
}

func TestDecodeFrameRejectsWrongArgCount(t *testing.T) {
	_, err := DecodeFrame("0 alice secret")
	assert.Error(t, err)

	_, err = DecodeFrame("2")
	assert.Error(t, err)

	_, err = DecodeFrame("6 bob extra")
	assert.Error(t, err)
}

func TestDecodeFrameRejectsGarbage(t *testing.T) {
	_, err := DecodeFrame("")
	assert.Error(t, err)

	_, err = DecodeFrame("not-a-number")
	assert.Error(t, err)

	_, err = DecodeFrame("9")
	assert.Error(t, err)
}

func TestSplitFramesMultipleAndPartial(t *testing.T) {
	frames, rest := splitFrames([]byte("3\n4\n5 extr"))
	assert.Equal(t, []string{"3", "4"}, frames)
	assert.Equal(t, "5 extr", string(rest))
}

func TestSplitFramesTruncatesAtZeroByte(t *testing.T) {
	frames, rest := splitFrames([]byte("1\n\x00garbage"))
	assert.Equal(t, []string{"1"}, frames)
	assert.Empty(t, rest)
}
