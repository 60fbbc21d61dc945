package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *UserStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Database.json")
	s, err := Open(path, nil)
	require.NoError(t, err)
	return s
}

func TestRegisterAndCheckPassword(t *testing.T) {
	s := openTemp(t)

	added, err := s.Register("alice", "secret")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Register("alice", "other")
	require.NoError(t, err)
	assert.False(t, added, "re-registering an existing nickname must not overwrite it")

	assert.True(t, s.CheckPassword("alice", "secret"))
	assert.False(t, s.CheckPassword("alice", "other"))
	assert.False(t, s.CheckPassword("nobody", "secret"))
}

func TestAddFriendSymmetric(t *testing.T) {
	s := openTemp(t)
	_, _ = s.Register("alice", "a")
	_, _ = s.Register("bob", "b")

	added, err := s.AddFriend("alice", "bob")
	require.NoError(t, err)
	assert.True(t, added)

	assert.Contains(t, s.Friends("alice"), "bob")
	assert.Contains(t, s.Friends("bob"), "alice")

	added, err = s.AddFriend("alice", "bob")
	require.NoError(t, err)
	assert.False(t, added, "adding an existing friend again must be a no-op")
}

func TestAddFriendRejectsSelfAndUnknown(t *testing.T) {
	s := openTemp(t)
	_, _ = s.Register("alice", "a")

	added, err := s.AddFriend("alice", "alice")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = s.AddFriend("alice", "ghost")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestScoreboardOrderAndTieBreak(t *testing.T) {
	s := openTemp(t)
	_, _ = s.Register("alice", "a")
	_, _ = s.Register("bob", "b")
	_, _ = s.Register("carol", "c")
	_, _ = s.AddFriend("alice", "bob")
	_, _ = s.AddFriend("alice", "carol")

	require.NoError(t, s.SetScore("alice", 10))
	require.NoError(t, s.SetScore("bob", 3))
	require.NoError(t, s.SetScore("carol", 7))

	board := s.Scoreboard("alice")
	require.Len(t, board, 3)
	assert.Equal(t, "alice", board[0].Nickname)
	assert.Equal(t, "carol", board[1].Nickname)
	assert.Equal(t, "bob", board[2].Nickname)
}

func TestSnapshotReloadsToExactState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Database.json")
	s, err := Open(path, nil)
	require.NoError(t, err)

	_, _ = s.Register("alice", "secret")
	require.NoError(t, s.SetScore("alice", 5))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var reloaded map[string]*User
	require.NoError(t, json.Unmarshal(data, &reloaded))

	u, ok := reloaded["alice"]
	require.True(t, ok)
	assert.Equal(t, 5, u.Score)
	assert.Equal(t, JavaStringHash("secret"), u.PwdHash)
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	s, err := Open(path, nil)
	require.NoError(t, err)
	assert.Nil(t, s.Get("anyone"))
}
