// Package matchmaking pools waiting players and forms matches once a quorum
// arrives or a wait elapses. It owns no game state: formed rosters are handed
// to a starter callback and forgotten.
package matchmaking

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/game"
)

// Starter receives a formed roster. The game manager's StartMatch satisfies
// it.
type Starter func(roster []game.RosterEntry)

// TimeoutNotifier tells a waiter matchmaking gave up on them.
type TimeoutNotifier func(playerID string, waited time.Duration)

type waiter struct {
	playerID   string
	name       string
	enqueuedAt time.Time
}

// Queue is the single shared matchmaking structure, guarded by one mutex.
type Queue struct {
	cfg       config.Config
	logger    *zap.SugaredLogger
	start     Starter
	onTimeout TimeoutNotifier

	mu      sync.Mutex
	waiting []waiter

	stop     chan struct{}
	stopOnce sync.Once
}

// New builds a queue; call Run to begin the sweep loop.
func New(cfg config.Config, start Starter, onTimeout TimeoutNotifier, logger *zap.SugaredLogger) *Queue {
	return &Queue{
		cfg:       cfg,
		logger:    logger,
		start:     start,
		onTimeout: onTimeout,
		stop:      make(chan struct{}),
	}
}

// Enqueue adds a waiting player. A full lobby forms a match immediately;
// otherwise the sweep loop decides. Re-enqueueing the same player refreshes
// nothing and is ignored.
func (q *Queue) Enqueue(playerID, name string) {
	now := time.Now()
	q.mu.Lock()
	for _, w := range q.waiting {
		if w.playerID == playerID {
			q.mu.Unlock()
			return
		}
	}
	q.waiting = append(q.waiting, waiter{playerID: playerID, name: name, enqueuedAt: now})
	var roster []game.RosterEntry
	if len(q.waiting) >= q.cfg.MaxPlayers {
		roster = q.takeLocked(q.cfg.MaxPlayers)
	}
	q.mu.Unlock()

	if roster != nil {
		q.logger.Infow("full lobby, forming match", "players", len(roster))
		q.start(roster)
	}
}

// Dequeue removes a waiting player, e.g. on disconnect before match start.
// No-op if the player was already matched or never queued.
func (q *Queue) Dequeue(playerID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, w := range q.waiting {
		if w.playerID == playerID {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}

// SetTiming hot-updates the quorum wait and queue timeout. The admin
// endpoint calls this; zero values leave the current setting alone.
func (q *Queue) SetTiming(quorumWait, queueTimeout time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if quorumWait > 0 {
		q.cfg.QuorumWait = quorumWait
	}
	if queueTimeout > 0 {
		q.cfg.QueueTimeout = queueTimeout
	}
}

// Timing reports the live quorum wait and queue timeout.
func (q *Queue) Timing() (time.Duration, time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cfg.QuorumWait, q.cfg.QueueTimeout
}

// Waiting reports the current queue depth.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Run sweeps the queue until Close. The sweep cadence only bounds how late a
// quorum start or timeout can fire, so one second is plenty.
func (q *Queue) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-q.stop:
			return
		case now := <-ticker.C:
			q.sweep(now)
		}
	}
}

// Close stops the sweep loop.
func (q *Queue) Close() {
	q.stopOnce.Do(func() { close(q.stop) })
}

// sweep forms quorum matches whose wait elapsed and times out waiters that
// never reached a quorum.
func (q *Queue) sweep(now time.Time) {
	q.mu.Lock()
	var roster []game.RosterEntry
	if len(q.waiting) >= q.cfg.MinPlayers &&
		now.Sub(q.waiting[0].enqueuedAt) >= q.cfg.QuorumWait {
		count := len(q.waiting)
		if count > q.cfg.MaxPlayers {
			count = q.cfg.MaxPlayers
		}
		roster = q.takeLocked(count)
	}

	var timedOut []waiter
	if roster == nil && len(q.waiting) < q.cfg.MinPlayers {
		kept := q.waiting[:0]
		for _, w := range q.waiting {
			if now.Sub(w.enqueuedAt) >= q.cfg.QueueTimeout {
				timedOut = append(timedOut, w)
				continue
			}
			kept = append(kept, w)
		}
		q.waiting = kept
	}
	q.mu.Unlock()

	if roster != nil {
		q.logger.Infow("quorum reached, forming match", "players", len(roster))
		q.start(roster)
	}
	for _, w := range timedOut {
		q.logger.Infow("matchmaking timeout", "player", w.playerID)
		if q.onTimeout != nil {
			q.onTimeout(w.playerID, now.Sub(w.enqueuedAt))
		}
	}
}

// takeLocked removes and returns the n oldest waiters as a roster.
func (q *Queue) takeLocked(n int) []game.RosterEntry {
	roster := make([]game.RosterEntry, 0, n)
	for _, w := range q.waiting[:n] {
		roster = append(roster, game.RosterEntry{PlayerID: w.playerID, Name: w.name})
	}
	q.waiting = append(q.waiting[:0], q.waiting[n:]...)
	return roster
}
