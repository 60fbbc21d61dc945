// Package store implements WordQuizzle's persistent user database: an
// in-memory nickname->User map backed by a single JSON document, serialized
// to disk after every mutation, grounded on the original Java server's
// QuizzleDatabase (full-map serialize/deserialize around a ConcurrentHashMap).
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// SnapshotErrorHook is invoked whenever a snapshot write fails. The mutation
// that triggered it has already taken effect in memory; per spec.md §7(e) the
// failure is logged and subsumed by the next successful snapshot. The server
// wires this to its Stats snapshot-failure counter (Stats.SnapshotFailed).
type SnapshotErrorHook func(err error)

// UserStore is the concurrent, disk-backed user database.
type UserStore struct {
	path string

	mu    sync.RWMutex
	users map[string]*User

	snapshotMu sync.Mutex
	onSnapErr  SnapshotErrorHook

	log *logrus.Logger
}

// Open loads path if it exists, or starts an empty store (the file is
// created on the first mutation) if it does not.
func Open(path string, log *logrus.Logger) (*UserStore, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &UserStore{path: path, users: make(map[string]*User), log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	var loaded map[string]*User
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("store: decoding %s: %w", path, err)
	}
	s.users = loaded
	return s, nil
}

// OnSnapshotError registers a callback fired on snapshot write failure.
func (s *UserStore) OnSnapshotError(hook SnapshotErrorHook) {
	s.onSnapErr = hook
}

// Get returns a copy-free pointer to the nickname's User, or nil if absent.
// Callers must not mutate the returned User's Friends slice directly; use
// AddFriend.
func (s *UserStore) Get(nickname string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users[nickname]
}

// Register inserts a new user with the given password if the nickname is not
// already taken. Returns added=false if the nickname exists.
func (s *UserStore) Register(nickname, password string) (added bool, err error) {
	s.mu.Lock()
	if _, exists := s.users[nickname]; exists {
		s.mu.Unlock()
		return false, nil
	}
	s.users[nickname] = &User{
		Nickname: nickname,
		PwdHash:  JavaStringHash(password),
		Score:    0,
		Friends:  []string{},
	}
	s.mu.Unlock()

	if err := s.snapshot(); err != nil {
		s.reportSnapshotError(err)
		return true, err
	}
	return true, nil
}

// CheckPassword reports whether password hashes to the stored PwdHash for
// nickname. Returns false if nickname is unknown.
func (s *UserStore) CheckPassword(nickname, password string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[nickname]
	if !ok {
		return false
	}
	return u.PwdHash == JavaStringHash(password)
}

// SetScore adds delta to nickname's score. No-op if nickname is unknown.
func (s *UserStore) SetScore(nickname string, delta int) error {
	s.mu.Lock()
	u, ok := s.users[nickname]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	u.Score += delta
	s.mu.Unlock()

	if err := s.snapshot(); err != nil {
		s.reportSnapshotError(err)
		return err
	}
	return nil
}

// AddFriend adds a symmetric friendship between a and b. Returns added=false
// if a==b, either user is unknown, or they are already friends.
func (s *UserStore) AddFriend(a, b string) (added bool, err error) {
	s.mu.Lock()
	if a == b {
		s.mu.Unlock()
		return false, nil
	}
	ua, okA := s.users[a]
	ub, okB := s.users[b]
	if !okA || !okB {
		s.mu.Unlock()
		return false, nil
	}
	if ua.HasFriend(b) {
		s.mu.Unlock()
		return false, nil
	}
	ua.Friends = append(ua.Friends, b)
	ub.Friends = append(ub.Friends, a)
	s.mu.Unlock()

	if err := s.snapshot(); err != nil {
		s.reportSnapshotError(err)
		return true, err
	}
	return true, nil
}

// Friends returns nickname's current friend list, insertion order preserved.
func (s *UserStore) Friends(nickname string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[nickname]
	if !ok {
		return nil
	}
	out := make([]string, len(u.Friends))
	copy(out, u.Friends)
	return out
}

// Scoreboard returns nickname plus every one of its friends, sorted by score
// descending; ties preserve the order in which friends were appended to the
// caller's friend list with the caller placed last, reproducing the original
// ArrayList.sort(null) stable-sort tie-break over [friends..., self].
func (s *UserStore) Scoreboard(nickname string) []*User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	self, ok := s.users[nickname]
	if !ok {
		return nil
	}
	board := make([]*User, 0, len(self.Friends)+1)
	for _, f := range self.Friends {
		if u, ok := s.users[f]; ok {
			board = append(board, u)
		}
	}
	board = append(board, self)

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}

// snapshot serializes the full user map and overwrites the database file.
// Callers must not hold s.mu when calling this.
func (s *UserStore) snapshot() error {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	s.mu.RLock()
	data, err := json.MarshalIndent(s.users, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("store: marshaling snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("store: renaming %s to %s: %w", tmp, s.path, err)
	}
	return nil
}

func (s *UserStore) reportSnapshotError(err error) {
	s.log.WithError(err).Error("snapshot write failed; in-memory state is ahead of disk")
	if s.onSnapErr != nil {
		s.onSnapErr(err)
	}
}

// Path returns the configured database file path, mostly for tests and logs.
func (s *UserStore) Path() string {
	return filepath.Clean(s.path)
}
