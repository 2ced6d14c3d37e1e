// Package game owns the authoritative match simulation: the per-match state
// machine, the fixed-tick loop, the physics-modification engine, and the
// weapon integration gateway. Within one match all mutation happens on the
// match goroutine; everything else hands intent across a bounded channel.
package game

import "math"

// Arena and combat tuning. The simulation reads physics multipliers from the
// modification engine on top of these bases every tick.
const (
	arenaWidth  = 800.0
	arenaHeight = 600.0

	playerMaxHealth = 100.0
	playerMoveSpeed = 160.0 // pixels per second at friction 1.0
	playerHitRadius = 20.0
	spawnMargin     = 80.0

	// accelRate controls how fast velocity converges on intent; the friction
	// multiplier scales it, so low friction means a slippery arena.
	accelRate = 12.0

	// gravityAccel arcs projectiles downward, scaled by the gravity
	// multiplier.
	gravityAccel = 90.0

	// baseRestitution is the wall-bounce energy factor before modifications.
	// Projectiles only survive a wall hit once the effective restitution
	// clears bounceThreshold, so bouncing is off until a bounce modification
	// raises it.
	baseRestitution = 0.25
	bounceThreshold = 0.5

	// maxLoadoutSize caps a player's carried weapons; attaching past it
	// evicts the oldest.
	maxLoadoutSize = 5
)

// Vec2 is a position or velocity in arena space.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

func (v Vec2) length() float64 { return math.Hypot(v.X, v.Y) }

func (v Vec2) normalized() Vec2 {
	l := v.length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

func distance(a, b Vec2) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// MatchStatus is the lifecycle state of a match. Transitions only ever move
// forward: waiting, starting, active, then finished or cancelled.
type MatchStatus string

const (
	StatusWaiting   MatchStatus = "waiting"
	StatusStarting  MatchStatus = "starting"
	StatusActive    MatchStatus = "active"
	StatusFinished  MatchStatus = "finished"
	StatusCancelled MatchStatus = "cancelled"
)

var allowedTransitions = map[MatchStatus][]MatchStatus{
	StatusWaiting:  {StatusStarting, StatusCancelled},
	StatusStarting: {StatusActive, StatusCancelled},
	StatusActive:   {StatusFinished, StatusCancelled},
}

func transitionAllowed(from, to MatchStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
