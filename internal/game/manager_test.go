package game

import (
	"testing"
	"time"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/proto"
)

func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached: %s", msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// managerConfig shortens the countdown so lifecycle tests run in real time
// without waiting out the production delay.
func managerConfig() config.Config {
	cfg := testConfig()
	cfg.CountdownDelay = 50 * time.Millisecond
	return cfg
}

func TestManagerStartMatchNotifiesAndIndexes(t *testing.T) {
	sink := &frameSink{}
	mgr := NewManager(managerConfig(), sink, failingGenerator{}, testLogger())

	id := mgr.StartMatch([]RosterEntry{
		{PlayerID: "p1", Name: "alice"},
		{PlayerID: "p2", Name: "bob"},
	})
	m, ok := mgr.Match(id)
	if !ok {
		t.Fatalf("started match not registered")
	}
	defer m.Close()

	if byPlayer, ok := mgr.MatchFor("p1"); !ok || byPlayer.ID != id {
		t.Fatalf("player index does not resolve the match")
	}

	found := payloads[proto.MatchFound](t, sink, "p2", proto.TypeMatchFound)
	if len(found) != 1 || found[0].MatchID != id || len(found[0].Players) != 2 {
		t.Fatalf("match_found = %+v", found)
	}

	eventually(t, time.Second, func() bool {
		s := m.Status()
		return s == StatusStarting || s == StatusActive
	}, "match never left waiting")
}

func TestManagerDisconnectDrainsAndRemoves(t *testing.T) {
	sink := &frameSink{}
	mgr := NewManager(managerConfig(), sink, failingGenerator{}, testLogger())

	id := mgr.StartMatch([]RosterEntry{
		{PlayerID: "p1", Name: "alice"},
		{PlayerID: "p2", Name: "bob"},
	})
	m, _ := mgr.Match(id)

	mgr.HandleDisconnect("p2")
	eventually(t, time.Second, func() bool {
		return m.Status() == StatusCancelled
	}, "drained match not cancelled")

	// Teardown removes the match and its player index after the grace window.
	eventually(t, 2*time.Second, func() bool {
		_, ok := mgr.Match(id)
		return !ok
	}, "cancelled match never removed")
	if _, ok := mgr.MatchFor("p1"); ok {
		t.Fatalf("player index survived match removal")
	}
}

func TestManagerAutoModificationRotation(t *testing.T) {
	sink := &frameSink{}
	mgr := NewManager(managerConfig(), sink, failingGenerator{}, testLogger())

	id := mgr.StartMatch([]RosterEntry{
		{PlayerID: "p1", Name: "alice"},
		{PlayerID: "p2", Name: "bob"},
	})
	m, _ := mgr.Match(id)
	defer m.Close()

	eventually(t, 5*time.Second, func() bool {
		return m.Status() == StatusActive
	}, "match never became active")

	mgr.ProposeAutoModifications()
	eventually(t, time.Second, func() bool {
		return m.Metrics.ModsAccepted.Load() == 1
	}, "auto modification not applied")

	changes := payloads[proto.PhysicsModification](t, sink, "p1", proto.TypePhysicsChanged)
	if len(changes) != 1 || changes[0].Type != autoModRotation[0].Type {
		t.Fatalf("physics_changed = %+v", changes)
	}
}
