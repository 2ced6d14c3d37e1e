package game

import (
	"sort"
	"time"
)

// Fire rejection reasons, sent back on weapon_use.
const (
	RejectNotAlive       = "not_alive"
	RejectMatchNotActive = "match_not_active"
	RejectUnknownWeapon  = "unknown_weapon"
	RejectWeaponCooldown = "weapon_cooldown"
	RejectOutOfAmmo      = "out_of_ammo"
	RejectCooldownActive = "cooldown_active"
	RejectPendingRequest = "generation_pending"
	RejectUnknownMatch   = "unknown_match"
)

const areaBlastRadius = 0.4 // fraction of weapon range

// fireWeapon validates and executes one use of an owned weapon aimed at
// target. A non-empty return is the rejection reason.
func (m *Match) fireWeapon(p *playerState, w *Weapon, target Vec2, now time.Time) string {
	if !p.IsAlive {
		return RejectNotAlive
	}
	if last, ok := p.lastFired[w.ID]; ok {
		if now.Before(last.Add(time.Duration(w.Properties.CooldownMs) * time.Millisecond)) {
			return RejectWeaponCooldown
		}
	}
	if w.Properties.Ammo <= 0 {
		return RejectOutOfAmmo
	}

	w.Properties.Ammo--
	p.lastFired[w.ID] = now

	switch w.Category {
	case CategoryMelee:
		m.resolveMeleeHit(p, *w, target, now)
	case CategoryAreaEffect:
		m.resolveAreaHit(p, *w, target, now)
	case CategoryUtility:
		m.applyUtility(p, *w, now)
	default: // projectile and magic fly
		m.nextProjectileID++
		proj := spawnProjectile(m.nextProjectileID, p, *w, target, m.physics, now)
		m.projectiles[proj.ID] = &proj
	}
	return ""
}

// resolveMeleeHit strikes the closest living opponent within range.
func (m *Match) resolveMeleeHit(attacker *playerState, w Weapon, target Vec2, now time.Time) {
	var victim *playerState
	best := w.Properties.Range + playerHitRadius
	for _, id := range m.sortedPlayerIDs() {
		candidate := m.players[id]
		if candidate.ID == attacker.ID || !candidate.IsAlive {
			continue
		}
		d := distance(attacker.Position, candidate.Position)
		if d < best {
			best = d
			victim = candidate
		}
	}
	if victim == nil {
		return
	}
	m.applyDamage(attacker.ID, victim, w.Properties.Damage, now)
	applyOnHitEffect(victim, w, now)
	m.applyKnockback(attacker.Position, victim, w)
}

// resolveAreaHit damages every living player inside the blast circle around
// the (range-clamped) target point, the attacker included.
func (m *Match) resolveAreaHit(attacker *playerState, w Weapon, target Vec2, now time.Time) {
	offset := Vec2{target.X - attacker.Position.X, target.Y - attacker.Position.Y}
	if offset.length() > w.Properties.Range {
		target = attacker.Position.add(offset.normalized().scale(w.Properties.Range))
	}
	radius := w.Properties.Range * areaBlastRadius
	for _, id := range m.sortedPlayerIDs() {
		victim := m.players[id]
		if !victim.IsAlive {
			continue
		}
		if distance(target, victim.Position) > radius+playerHitRadius {
			continue
		}
		m.applyDamage(attacker.ID, victim, w.Properties.Damage, now)
		if victim.ID != attacker.ID {
			applyOnHitEffect(victim, w, now)
			m.applyKnockback(target, victim, w)
		}
	}
}

// applyUtility executes self-targeted weapons; only heal does anything
// mechanical today, everything else is cosmetic by registry fallback.
func (m *Match) applyUtility(p *playerState, w Weapon, now time.Time) {
	if w.Properties.SpecialEffect == EffectHeal {
		p.applyHealthDelta(w.Properties.EffectParameters["amount"])
	}
}

func (m *Match) applyKnockback(from Vec2, victim *playerState, w Weapon) {
	if w.Properties.SpecialEffect != EffectKnockback {
		return
	}
	dir := Vec2{victim.Position.X - from.X, victim.Position.Y - from.Y}.normalized()
	victim.Velocity = victim.Velocity.add(dir.scale(w.Properties.EffectParameters["force"]))
}

// applyDamage routes all health loss through one place so kill and death
// accounting cannot drift. Self-damage never awards a kill.
func (m *Match) applyDamage(attackerID string, victim *playerState, damage float64, now time.Time) {
	if !victim.applyHealthDelta(-damage) {
		return
	}
	victim.Deaths++
	m.eliminations++
	if attacker, ok := m.players[attackerID]; ok && attackerID != victim.ID {
		attacker.Kills++
	}
}

// resolveCollisions tests every projectile against every player. Projectiles
// are processed in ascending ID order so simultaneous multi-hits resolve the
// same way on every run.
func (m *Match) resolveCollisions(now time.Time) {
	for _, pid := range m.sortedProjectileIDs() {
		proj := m.projectiles[pid]
		for _, id := range m.sortedPlayerIDs() {
			victim := m.players[id]
			if !victim.IsAlive || victim.ID == proj.OwnerID {
				continue
			}
			if distance(proj.Position, victim.Position) > playerHitRadius {
				continue
			}
			m.applyDamage(proj.OwnerID, victim, proj.Damage, now)
			applyOnHitEffect(victim, proj.Weapon, now)
			m.applyKnockback(proj.Position, victim, proj.Weapon)
			delete(m.projectiles, pid)
			break
		}
	}
}

// applyConditions ticks damage-over-time riders. Burn kills credit the
// player whose weapon applied the condition.
func (m *Match) applyConditions(dt float64, now time.Time) {
	for _, id := range m.sortedPlayerIDs() {
		p := m.players[id]
		if !p.IsAlive {
			continue
		}
		for _, c := range p.conditions {
			if c.kind != EffectBurn || !now.Before(c.expiresAt) {
				continue
			}
			m.applyDamage(c.sourceID, p, c.magnitude*dt, now)
			if !p.IsAlive {
				break
			}
		}
		p.pruneConditions(now)
	}
}

// betterByRecord orders players by kills descending, deaths ascending, then
// player ID ascending. This is the end-of-match tie-break.
func betterByRecord(a, b *playerState) bool {
	if a.Kills != b.Kills {
		return a.Kills > b.Kills
	}
	if a.Deaths != b.Deaths {
		return a.Deaths < b.Deaths
	}
	return a.ID < b.ID
}

// betterByHealth orders by remaining health first, falling back to the
// record tie-break. Used when the match-duration cap fires.
func betterByHealth(a, b *playerState) bool {
	if a.Health != b.Health {
		return a.Health > b.Health
	}
	return betterByRecord(a, b)
}

func pickWinner(players []*playerState, better func(a, b *playerState) bool) string {
	if len(players) == 0 {
		return ""
	}
	best := players[0]
	for _, p := range players[1:] {
		if better(p, best) {
			best = p
		}
	}
	return best.ID
}

// evaluateVictory checks the two end conditions: last player standing (or a
// double-KO tie-break) and the match-duration cap.
func (m *Match) evaluateVictory(now time.Time) (string, string, bool) {
	all := make([]*playerState, 0, len(m.players))
	alive := make([]*playerState, 0, len(m.players))
	for _, id := range m.sortedPlayerIDs() {
		p := m.players[id]
		all = append(all, p)
		if p.IsAlive {
			alive = append(alive, p)
		}
	}

	switch len(alive) {
	case 1:
		return alive[0].ID, "last_alive", true
	case 0:
		return pickWinner(all, betterByRecord), "double_ko", true
	}

	if !m.startTime.IsZero() && !now.Before(m.startTime.Add(m.cfg.MatchDuration)) {
		return pickWinner(alive, betterByHealth), "time_limit", true
	}
	return "", "", false
}

func (m *Match) sortedPlayerIDs() []string {
	ids := make([]string, 0, len(m.players))
	for id := range m.players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Match) sortedProjectileIDs() []uint64 {
	ids := make([]uint64, 0, len(m.projectiles))
	for id := range m.projectiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
