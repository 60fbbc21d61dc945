package server

import (
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frjnn/wordquizzle/internal/presence"
	"github.com/frjnn/wordquizzle/internal/wqnet"
)

// Stats tracks the in-process counters the periodic status line reports,
// grounded on the teacher's statusPrinter/SystemMetrics but repurposed from
// /proc-derived host metrics (irrelevant here — WordQuizzle has no HTTP
// status page, per SPEC_FULL.md §6.1) to the server's own live counters.
type Stats struct {
	matchesInProgress int64
	snapshotFailures  int64
	workersSaturated  int64
}

// NewStats returns a zeroed Stats.
func NewStats() *Stats {
	return &Stats{}
}

// MatchStarted and MatchEnded bracket one MatchTask's invitation+play
// lifetime.
func (s *Stats) MatchStarted() { atomic.AddInt64(&s.matchesInProgress, 1) }
func (s *Stats) MatchEnded()   { atomic.AddInt64(&s.matchesInProgress, -1) }

// MatchesInProgress reports the current count.
func (s *Stats) MatchesInProgress() int64 { return atomic.LoadInt64(&s.matchesInProgress) }

// SnapshotFailed increments the snapshot-failure counter; wired as a
// store.SnapshotErrorHook at startup.
func (s *Stats) SnapshotFailed() { atomic.AddInt64(&s.snapshotFailures, 1) }

// SnapshotFailures reports the current count.
func (s *Stats) SnapshotFailures() int64 { return atomic.LoadInt64(&s.snapshotFailures) }

// WorkerSaturated records one instance of the reactor finding the worker
// pool's channel full (spec.md §4.2's sizing caveat: the operator is
// responsible for sizing the pool to simultaneously-possible MatchTasks + 2;
// this gauge is how a tight budget becomes observable instead of silent).
func (s *Stats) WorkerSaturated() { atomic.AddInt64(&s.workersSaturated, 1) }

// WorkersSaturated reports how many times the worker pool has been found
// full since startup.
func (s *Stats) WorkersSaturated() int64 { return atomic.LoadInt64(&s.workersSaturated) }

// StatusPrinter logs one INFO line every 5 minutes, grounded on the
// teacher's statusPrinter goroutine.
func StatusPrinter(log *logrus.Logger, presence *presence.Presence, epoll *wqnet.Epoll, sessions *SessionRegistry, stats *Stats, startTime time.Time) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		debug.FreeOSMemory()

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		log.WithFields(logrus.Fields{
			"online_users":        presence.Count(),
			"live_connections":    epoll.Count(),
			"matches_in_progress": stats.MatchesInProgress(),
			"tasks_in_flight":     sessions.TasksInFlight(),
			"snapshot_failures":   stats.SnapshotFailures(),
			"workers_saturated":   stats.WorkersSaturated(),
			"goroutines":          runtime.NumGoroutine(),
			"heap_mb":             float64(m.HeapInuse) / (1024 * 1024),
			"uptime":              time.Since(startTime).Round(time.Second).String(),
		}).Info("server status")
	}
}
