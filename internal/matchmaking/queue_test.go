package matchmaking

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/game"
)

type recorder struct {
	mu       sync.Mutex
	rosters  [][]game.RosterEntry
	timeouts []string
}

func (r *recorder) start(roster []game.RosterEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rosters = append(r.rosters, roster)
}

func (r *recorder) timeout(playerID string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeouts = append(r.timeouts, playerID)
}

func newTestQueue(rec *recorder) *Queue {
	cfg := config.Config{
		MinPlayers:   2,
		MaxPlayers:   4,
		QuorumWait:   10 * time.Second,
		QueueTimeout: 60 * time.Second,
	}
	return New(cfg, rec.start, rec.timeout, zap.NewNop().Sugar())
}

func TestFullLobbyFormsImmediately(t *testing.T) {
	rec := &recorder{}
	q := newTestQueue(rec)

	for _, id := range []string{"p1", "p2", "p3"} {
		q.Enqueue(id, id)
	}
	if len(rec.rosters) != 0 {
		t.Fatalf("match formed before the lobby filled")
	}
	q.Enqueue("p4", "p4")

	if len(rec.rosters) != 1 || len(rec.rosters[0]) != 4 {
		t.Fatalf("rosters = %+v, want one roster of 4", rec.rosters)
	}
	if q.Waiting() != 0 {
		t.Fatalf("waiting = %d after formation, want 0", q.Waiting())
	}
	if rec.rosters[0][0].PlayerID != "p1" {
		t.Fatalf("oldest waiter not first in roster: %+v", rec.rosters[0])
	}
}

func TestQuorumFormsAfterWait(t *testing.T) {
	rec := &recorder{}
	q := newTestQueue(rec)
	q.Enqueue("p1", "alice")
	q.Enqueue("p2", "bob")

	base := q.waiting[0].enqueuedAt
	q.sweep(base.Add(9 * time.Second))
	if len(rec.rosters) != 0 {
		t.Fatalf("quorum formed before the wait elapsed")
	}

	q.sweep(base.Add(10 * time.Second))
	if len(rec.rosters) != 1 || len(rec.rosters[0]) != 2 {
		t.Fatalf("rosters = %+v, want one roster of 2", rec.rosters)
	}
}

func TestLoneWaiterTimesOut(t *testing.T) {
	rec := &recorder{}
	q := newTestQueue(rec)
	q.Enqueue("p1", "alice")

	base := q.waiting[0].enqueuedAt
	q.sweep(base.Add(59 * time.Second))
	if len(rec.timeouts) != 0 {
		t.Fatalf("timeout fired early")
	}

	q.sweep(base.Add(61 * time.Second))
	if len(rec.rosters) != 0 {
		t.Fatalf("a single waiter formed a match")
	}
	if len(rec.timeouts) != 1 || rec.timeouts[0] != "p1" {
		t.Fatalf("timeouts = %v, want [p1]", rec.timeouts)
	}
	if q.Waiting() != 0 {
		t.Fatalf("timed-out waiter still queued")
	}
}

func TestDequeueAndDuplicateEnqueue(t *testing.T) {
	rec := &recorder{}
	q := newTestQueue(rec)

	q.Enqueue("p1", "alice")
	q.Enqueue("p1", "alice")
	if q.Waiting() != 1 {
		t.Fatalf("duplicate enqueue changed depth: %d", q.Waiting())
	}

	q.Dequeue("p1")
	if q.Waiting() != 0 {
		t.Fatalf("dequeue left the waiter behind")
	}
	q.Dequeue("p1") // no-op
}

func TestSetTimingHotUpdates(t *testing.T) {
	rec := &recorder{}
	q := newTestQueue(rec)

	q.SetTiming(2*time.Second, 0)
	quorum, timeout := q.Timing()
	if quorum != 2*time.Second {
		t.Fatalf("quorum wait = %v, want 2s", quorum)
	}
	if timeout != 60*time.Second {
		t.Fatalf("zero update changed queue timeout: %v", timeout)
	}

	q.Enqueue("p1", "alice")
	q.Enqueue("p2", "bob")
	q.sweep(q.waiting[0].enqueuedAt.Add(3 * time.Second))
	if len(rec.rosters) != 1 {
		t.Fatalf("updated quorum wait not applied")
	}
}
