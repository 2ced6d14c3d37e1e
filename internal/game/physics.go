package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ModificationType enumerates the physics parameters a modification may
// scale.
type ModificationType string

const (
	ModGravity        ModificationType = "gravity"
	ModFriction       ModificationType = "friction"
	ModBounce         ModificationType = "bounce"
	ModTimeScale      ModificationType = "time_scale"
	ModWeaponBehavior ModificationType = "weapon_behavior"
)

// Multipliers outside this window are clamped; a zero or negative proposal
// would otherwise freeze or invert the simulation.
const (
	modMultiplierMin = 0.25
	modMultiplierMax = 4.0
)

// auditWindow keeps expired modifications visible to diagnostics for a while
// after they stop affecting the simulation.
const auditWindow = 30 * time.Second

// Proposal rejection reasons, surfaced verbatim to clients.
var (
	ErrMatchNotActive      = errors.New("match_not_active")
	ErrDurationOutOfBounds = errors.New("duration_out_of_bounds")
	ErrUnknownModification = errors.New("unknown_modification_type")
)

// PhysicsModification is one accepted, time-bounded rule change. Immutable
// once accepted; it simply stops contributing when its interval lapses.
type PhysicsModification struct {
	ID         string
	Type       ModificationType
	Parameters map[string]float64
	Duration   time.Duration
	StartTime  time.Time
	MatchID    string
}

// activeAt reports whether t falls inside [StartTime, StartTime+Duration).
func (m PhysicsModification) activeAt(t time.Time) bool {
	return !t.Before(m.StartTime) && t.Before(m.StartTime.Add(m.Duration))
}

func (m PhysicsModification) multiplier() float64 {
	value, ok := m.Parameters["multiplier"]
	if !ok {
		return 1
	}
	return clampFloat(value, modMultiplierMin, modMultiplierMax)
}

// PhysicsState is the resolved set of multipliers the simulation reads each
// tick. Every field is 1.0 when no modification is active.
type PhysicsState struct {
	Gravity         float64
	Friction        float64
	Restitution     float64
	TimeScale       float64
	ProjectileSpeed float64
}

func basePhysics() PhysicsState {
	return PhysicsState{Gravity: 1, Friction: 1, Restitution: 1, TimeScale: 1, ProjectileSpeed: 1}
}

// ModificationCandidate is an untrusted proposal, either translated from a
// master prompt by the external generator or produced by the auto scheduler.
type ModificationCandidate struct {
	Type       string
	Parameters map[string]float64
	DurationMs int64
}

// modificationEngine owns the stacked rule changes of one match. It is not
// safe for concurrent use; the match goroutine is its only caller.
type modificationEngine struct {
	matchID     string
	minDuration time.Duration
	maxDuration time.Duration
	active      []PhysicsModification
	audit       []PhysicsModification
}

func newModificationEngine(matchID string, min, max time.Duration) *modificationEngine {
	return &modificationEngine{matchID: matchID, minDuration: min, maxDuration: max}
}

// propose validates a candidate and, if legal, stamps it with the current
// time and appends it to the stack. Modifications never replace each other:
// simultaneous proposals of the same type compound multiplicatively.
func (e *modificationEngine) propose(c ModificationCandidate, now time.Time) (PhysicsModification, error) {
	switch ModificationType(c.Type) {
	case ModGravity, ModFriction, ModBounce, ModTimeScale, ModWeaponBehavior:
	default:
		return PhysicsModification{}, ErrUnknownModification
	}
	duration := time.Duration(c.DurationMs) * time.Millisecond
	if duration < e.minDuration || duration > e.maxDuration {
		return PhysicsModification{}, ErrDurationOutOfBounds
	}

	params := make(map[string]float64, len(c.Parameters))
	for k, v := range c.Parameters {
		params[k] = v
	}
	mod := PhysicsModification{
		ID:         uuid.NewString(),
		Type:       ModificationType(c.Type),
		Parameters: params,
		Duration:   duration,
		StartTime:  now,
		MatchID:    e.matchID,
	}
	e.active = append(e.active, mod)
	return mod, nil
}

// resolve recomputes PhysicsState from scratch: base times the product of
// every active multiplier. Expired entries are pruned lazily into the audit
// ring; nothing is pushed to consumers on expiry.
func (e *modificationEngine) resolve(now time.Time) PhysicsState {
	state := basePhysics()

	kept := e.active[:0]
	for _, mod := range e.active {
		if !now.Before(mod.StartTime.Add(mod.Duration)) {
			e.audit = append(e.audit, mod)
			continue
		}
		kept = append(kept, mod)
		if !mod.activeAt(now) {
			continue
		}
		m := mod.multiplier()
		switch mod.Type {
		case ModGravity:
			state.Gravity *= m
		case ModFriction:
			state.Friction *= m
		case ModBounce:
			state.Restitution *= m
		case ModTimeScale:
			state.TimeScale *= m
		case ModWeaponBehavior:
			state.ProjectileSpeed *= m
		}
	}
	e.active = kept
	e.pruneAudit(now)
	return state
}

func (e *modificationEngine) pruneAudit(now time.Time) {
	kept := e.audit[:0]
	for _, mod := range e.audit {
		if now.Before(mod.StartTime.Add(mod.Duration).Add(auditWindow)) {
			kept = append(kept, mod)
		}
	}
	e.audit = kept
}

// activeSnapshot lists the modifications still contributing at t, for
// broadcast alongside the resolved state.
func (e *modificationEngine) activeSnapshot(t time.Time) []PhysicsModification {
	mods := make([]PhysicsModification, 0, len(e.active))
	for _, mod := range e.active {
		if mod.activeAt(t) {
			mods = append(mods, mod)
		}
	}
	return mods
}

// auditSnapshot exposes recently expired modifications for diagnostics.
func (e *modificationEngine) auditSnapshot() []PhysicsModification {
	out := make([]PhysicsModification, len(e.audit))
	copy(out, e.audit)
	return out
}
