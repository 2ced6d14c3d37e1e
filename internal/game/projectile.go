package game

import "time"

// projectileSpeedScale converts a weapon's speed property (10-100) into
// pixels per second.
const projectileSpeedScale = 6.0

// Projectile is a live shot owned by its match. IDs are per-match monotonic
// so iteration in ascending ID order is reproducible.
type Projectile struct {
	ID        uint64
	WeaponID  string
	OwnerID   string
	Position  Vec2
	Velocity  Vec2
	Damage    float64
	Weapon    Weapon // copy of the firing weapon, for on-hit effects
	CreatedAt time.Time
	ExpiresAt time.Time
}

// spawnProjectile builds a shot from a weapon aimed at target. Lifetime is
// derived from range over speed so a projectile dies where its range ends.
func spawnProjectile(id uint64, owner *playerState, w Weapon, target Vec2, physics PhysicsState, now time.Time) Projectile {
	dir := Vec2{target.X - owner.Position.X, target.Y - owner.Position.Y}.normalized()
	if dir.X == 0 && dir.Y == 0 {
		dir = Vec2{X: 1}
	}
	speed := w.Properties.Speed * projectileSpeedScale * physics.ProjectileSpeed
	lifetime := time.Duration(w.Properties.Range / speed * float64(time.Second))
	return Projectile{
		ID:        id,
		WeaponID:  w.ID,
		OwnerID:   owner.ID,
		Position:  owner.Position,
		Velocity:  dir.scale(speed),
		Damage:    w.Properties.Damage,
		Weapon:    w,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
}

// advanceProjectile integrates one tick of flight. It reports false when the
// projectile is spent: expired, or out of bounds without enough restitution
// to bounce.
func advanceProjectile(p *Projectile, physics PhysicsState, dt float64, now time.Time) bool {
	if !now.Before(p.ExpiresAt) {
		return false
	}

	scaled := dt * physics.TimeScale
	p.Velocity.Y += gravityAccel * physics.Gravity * scaled
	p.Position = p.Position.add(p.Velocity.scale(scaled))

	restitution := baseRestitution * physics.Restitution
	bounce := restitution >= bounceThreshold

	if p.Position.X < 0 || p.Position.X > arenaWidth {
		if !bounce {
			return false
		}
		p.Velocity.X = -p.Velocity.X * restitution
		p.Position.X = clampFloat(p.Position.X, 0, arenaWidth)
	}
	if p.Position.Y < 0 || p.Position.Y > arenaHeight {
		if !bounce {
			return false
		}
		p.Velocity.Y = -p.Velocity.Y * restitution
		p.Position.Y = clampFloat(p.Position.Y, 0, arenaHeight)
	}
	return true
}
