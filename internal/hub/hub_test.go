package hub

import (
	"testing"

	"go.uber.org/zap"
)

func TestEnqueueEvictsOldestWhenFull(t *testing.T) {
	c := newConn(nil, 2)

	if !c.enqueue([]byte("a")) || !c.enqueue([]byte("b")) {
		t.Fatalf("enqueue dropped with queue space available")
	}
	if c.enqueue([]byte("c")) {
		t.Fatalf("full queue reported a clean enqueue")
	}

	// The oldest frame was evicted in favour of the newest.
	first := <-c.send
	second := <-c.send
	if string(first) != "b" || string(second) != "c" {
		t.Fatalf("queue = [%s, %s], want [b, c]", first, second)
	}
}

func TestSendToUnknownPlayerIsNoOp(t *testing.T) {
	h := New(4, zap.NewNop().Sugar())
	h.Send("ghost", []byte("frame"))
	if h.framesSent.Load() != 0 || h.framesDropped.Load() != 0 {
		t.Fatalf("counters moved for an unknown player")
	}
}

func TestSnapshotReportsCounters(t *testing.T) {
	h := New(4, zap.NewNop().Sugar())
	snap := h.Snapshot()
	if snap["connections"] != 0 {
		t.Fatalf("connections = %v, want 0", snap["connections"])
	}
	if snap["frames_sent"] != int64(0) || snap["frames_dropped"] != int64(0) {
		t.Fatalf("snapshot = %v", snap)
	}
}
