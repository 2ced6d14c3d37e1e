package game

import (
	"errors"
	"math"
	"testing"
	"time"
)

func testEngine() *modificationEngine {
	return newModificationEngine("m1", 8*time.Second, 25*time.Second)
}

func gravityCandidate(mult float64, durationMs int64) ModificationCandidate {
	return ModificationCandidate{
		Type:       string(ModGravity),
		Parameters: map[string]float64{"multiplier": mult},
		DurationMs: durationMs,
	}
}

func TestResolveWithoutModificationsIsBase(t *testing.T) {
	e := testEngine()
	state := e.resolve(time.Now())
	if state != basePhysics() {
		t.Fatalf("expected base physics, got %+v", state)
	}
}

func TestStackedModificationsMultiply(t *testing.T) {
	e := testEngine()
	now := time.Unix(1000, 0)

	if _, err := e.propose(gravityCandidate(0.5, 10000), now); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := e.propose(gravityCandidate(2.0, 10000), now); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := e.propose(ModificationCandidate{
		Type:       string(ModTimeScale),
		Parameters: map[string]float64{"multiplier": 0.5},
		DurationMs: 10000,
	}, now); err != nil {
		t.Fatalf("propose: %v", err)
	}

	state := e.resolve(now.Add(time.Second))
	if math.Abs(state.Gravity-1.0) > 1e-9 {
		t.Fatalf("gravity = %v, want 1.0 (0.5 * 2.0)", state.Gravity)
	}
	if math.Abs(state.TimeScale-0.5) > 1e-9 {
		t.Fatalf("timeScale = %v, want 0.5", state.TimeScale)
	}
	if state.Friction != 1 || state.Restitution != 1 || state.ProjectileSpeed != 1 {
		t.Fatalf("untouched multipliers changed: %+v", state)
	}
}

func TestOverlappingIntervalsResolveIndependently(t *testing.T) {
	e := testEngine()
	t0 := time.Unix(2000, 0)

	// First modification covers [t0, t0+20s); the second covers
	// [t0+5s, t0+15s), nested inside it.
	if _, err := e.propose(gravityCandidate(0.5, 20000), t0); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := e.propose(gravityCandidate(2.0, 10000), t0.Add(5*time.Second)); err != nil {
		t.Fatalf("propose: %v", err)
	}

	cases := []struct {
		at   time.Duration
		want float64
	}{
		{1 * time.Second, 0.5},
		{7 * time.Second, 1.0},
		{16 * time.Second, 0.5},
		{21 * time.Second, 1.0},
	}
	for _, tc := range cases {
		got := e.resolve(t0.Add(tc.at)).Gravity
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("gravity at +%v = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestExpiredModificationMovesToAudit(t *testing.T) {
	e := testEngine()
	now := time.Unix(3000, 0)
	if _, err := e.propose(gravityCandidate(0.5, 10000), now); err != nil {
		t.Fatalf("propose: %v", err)
	}

	e.resolve(now.Add(11 * time.Second))
	if len(e.active) != 0 {
		t.Fatalf("expired modification still active")
	}
	if len(e.auditSnapshot()) != 1 {
		t.Fatalf("expired modification missing from audit")
	}

	// Past the audit window it disappears entirely.
	e.resolve(now.Add(10*time.Second + auditWindow + time.Second))
	if len(e.auditSnapshot()) != 0 {
		t.Fatalf("audit entry survived past the audit window")
	}
}

func TestProposeRejectsDurationOutOfBounds(t *testing.T) {
	e := testEngine()
	now := time.Now()

	for _, durationMs := range []int64{0, 7999, 25001, 60000} {
		if _, err := e.propose(gravityCandidate(0.5, durationMs), now); !errors.Is(err, ErrDurationOutOfBounds) {
			t.Fatalf("durationMs=%d: err = %v, want ErrDurationOutOfBounds", durationMs, err)
		}
	}
	if _, err := e.propose(gravityCandidate(0.5, 8000), now); err != nil {
		t.Fatalf("minimum duration rejected: %v", err)
	}
	if _, err := e.propose(gravityCandidate(0.5, 25000), now); err != nil {
		t.Fatalf("maximum duration rejected: %v", err)
	}
}

func TestProposeRejectsUnknownType(t *testing.T) {
	e := testEngine()
	_, err := e.propose(ModificationCandidate{Type: "wall_hack", DurationMs: 10000}, time.Now())
	if !errors.Is(err, ErrUnknownModification) {
		t.Fatalf("err = %v, want ErrUnknownModification", err)
	}
}

func TestMultiplierClamped(t *testing.T) {
	e := testEngine()
	now := time.Unix(4000, 0)

	if _, err := e.propose(gravityCandidate(100, 10000), now); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := e.propose(ModificationCandidate{
		Type:       string(ModFriction),
		Parameters: map[string]float64{"multiplier": 0},
		DurationMs: 10000,
	}, now); err != nil {
		t.Fatalf("propose: %v", err)
	}

	state := e.resolve(now.Add(time.Second))
	if state.Gravity != modMultiplierMax {
		t.Fatalf("gravity = %v, want clamped %v", state.Gravity, modMultiplierMax)
	}
	if state.Friction != modMultiplierMin {
		t.Fatalf("friction = %v, want clamped %v", state.Friction, modMultiplierMin)
	}
}

func TestActiveSnapshotExcludesExpired(t *testing.T) {
	e := testEngine()
	now := time.Unix(5000, 0)
	if _, err := e.propose(gravityCandidate(0.5, 10000), now); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if got := len(e.activeSnapshot(now.Add(time.Second))); got != 1 {
		t.Fatalf("active at +1s = %d, want 1", got)
	}
	if got := len(e.activeSnapshot(now.Add(11 * time.Second))); got != 0 {
		t.Fatalf("active at +11s = %d, want 0", got)
	}
}
