package rpcserver

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frjnn/wordquizzle/internal/store"
)

func newRegistration(t *testing.T) *Registration {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "Database.json"), nil)
	require.NoError(t, err)
	return NewRegistration(s, nil)
}

func TestRegisterSucceeds(t *testing.T) {
	r := newRegistration(t)
	var reply string
	require.NoError(t, r.Register(RegisterArgs{Username: "alice", Password: "secret"}, &reply))
	assert.Equal(t, "Registration succeeded.", reply)
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	r := newRegistration(t)
	var reply string

	require.NoError(t, r.Register(RegisterArgs{Username: "", Password: "x"}, &reply))
	assert.Equal(t, "Invalid username.", reply)

	require.NoError(t, r.Register(RegisterArgs{Username: "alice", Password: ""}, &reply))
	assert.Equal(t, "Invalid password.", reply)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	r := newRegistration(t)
	var reply string
	require.NoError(t, r.Register(RegisterArgs{Username: "alice", Password: "secret"}, &reply))
	require.NoError(t, r.Register(RegisterArgs{Username: "alice", Password: "other"}, &reply))
	assert.Equal(t, "Nickname already taken.", reply)
}
