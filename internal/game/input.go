package game

import (
	"time"

	"rift-arena/server/internal/proto"
)

// acceptInput applies a single input sample to a player if it survives the
// acceptance window and ordering checks. It returns the reason an input was
// dropped, or "" when accepted.
//
// Ordering is last-write-wins per player per tick: a sample older than the
// player's last applied sample is a duplicate or an out-of-order replay and
// is discarded.
const (
	inputDropStale   = "stale"
	inputDropSkewed  = "clock_skew"
	inputDropOrdered = "old_sequence"
)

func (m *Match) acceptInput(p *playerState, in proto.InputState, now time.Time) string {
	sent := time.UnixMilli(in.Timestamp)
	if sent.Before(now.Add(-m.cfg.MaxInputLag)) {
		return inputDropStale
	}
	if sent.After(now.Add(m.cfg.ClockSkewTolerance)) {
		return inputDropSkewed
	}
	if !p.lastInput.IsZero() && !sent.After(p.lastInput) {
		return inputDropOrdered
	}

	var move Vec2
	if in.Left {
		move.X -= 1
	}
	if in.Right {
		move.X += 1
	}
	if in.Up {
		move.Y -= 1
	}
	if in.Down {
		move.Y += 1
	}

	p.intentMove = move.normalized()
	p.fireHeld = in.Fire
	p.aim = Vec2{X: in.MouseX, Y: in.MouseY}
	p.lastInput = sent
	return ""
}

// integrateMovement advances one player by a tick. Velocity converges on the
// intent direction at a rate scaled by the friction multiplier, then position
// integrates under the current time scale.
func integrateMovement(p *playerState, physics PhysicsState, dt float64, now time.Time) {
	if !p.IsAlive {
		return
	}

	factor := p.movementFactor(now)
	target := p.intentMove.scale(playerMoveSpeed * factor)

	blend := accelRate * physics.Friction * dt
	if blend > 1 {
		blend = 1
	}
	p.Velocity.X += (target.X - p.Velocity.X) * blend
	p.Velocity.Y += (target.Y - p.Velocity.Y) * blend

	p.Position = p.Position.add(p.Velocity.scale(dt * physics.TimeScale))
	p.Position.X = clampFloat(p.Position.X, 0, arenaWidth)
	p.Position.Y = clampFloat(p.Position.Y, 0, arenaHeight)
}
