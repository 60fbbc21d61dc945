package server

import (
	"github.com/sirupsen/logrus"

	"github.com/frjnn/wordquizzle/internal/match"
	"github.com/frjnn/wordquizzle/internal/presence"
	"github.com/frjnn/wordquizzle/internal/store"
	"github.com/frjnn/wordquizzle/internal/wqnet"
	"github.com/frjnn/wordquizzle/internal/words"
)

// Context bundles every process-wide collaborator a task needs, passed by
// handle to every task rather than reached for via package-level
// singletons, per spec.md §9 "Global state... represent them as a single
// server context passed by handle to every task; avoid singletons."
type Context struct {
	Store       *store.UserStore
	Presence    *presence.Presence
	Depot       Depot
	Epoll       *wqnet.Epoll
	Sessions    *SessionRegistry
	Dictionary  *words.Dictionary
	Translator  words.Translator
	MatchConfig match.Config
	Stats       *Stats
	Log         *logrus.Logger
}
