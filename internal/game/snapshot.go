package game

import (
	"time"

	"rift-arena/server/internal/proto"
)

// Aliases keep loop.go free of proto plumbing noise.
const (
	protoTypeMatchStart = proto.TypeMatchStart
	protoTypeMatchEnd   = proto.TypeMatchEnd
)

func weaponToProto(w Weapon) proto.Weapon {
	return proto.Weapon{
		ID:       w.ID,
		Category: string(w.Category),
		Properties: proto.WeaponProperties{
			Damage:           w.Properties.Damage,
			Speed:            w.Properties.Speed,
			Range:            w.Properties.Range,
			Ammo:             w.Properties.Ammo,
			CooldownMs:       w.Properties.CooldownMs,
			SpecialEffect:    w.Properties.SpecialEffect,
			EffectParameters: w.Properties.EffectParameters,
		},
		BalanceScore: w.BalanceScore,
		OwnerID:      w.OwnerID,
	}
}

func modificationToProto(m PhysicsModification) proto.PhysicsModification {
	return proto.PhysicsModification{
		ID:         m.ID,
		Type:       string(m.Type),
		Parameters: m.Parameters,
		DurationMs: m.Duration.Milliseconds(),
		StartTime:  m.StartTime.UnixMilli(),
		MatchID:    m.MatchID,
	}
}

func (m *Match) matchStartPayload() proto.MatchStart {
	return proto.MatchStart{MatchID: m.ID, TickRate: m.cfg.TickRate}
}

func (m *Match) matchEndPayload() proto.MatchEnd {
	return proto.MatchEnd{MatchID: m.ID, WinnerID: m.winnerID, Reason: m.endReason}
}

// Snapshot renders the authoritative state for broadcast. Players and
// projectiles are emitted in ascending ID order so two identical states
// serialize byte-identically.
func (m *Match) Snapshot(now time.Time) proto.GameStateUpdate {
	players := make([]proto.PlayerState, 0, len(m.players))
	for _, id := range m.sortedPlayerIDs() {
		p := m.players[id]
		weapons := make([]proto.Weapon, 0, len(p.Weapons))
		for _, w := range p.Weapons {
			weapons = append(weapons, weaponToProto(w))
		}
		players = append(players, proto.PlayerState{
			ID:                  p.ID,
			Name:                p.Name,
			Health:              p.Health,
			Position:            proto.Vec2{X: p.Position.X, Y: p.Position.Y},
			Velocity:            proto.Vec2{X: p.Velocity.X, Y: p.Velocity.Y},
			Weapons:             weapons,
			WeaponCooldownUntil: p.WeaponCooldownUntil.UnixMilli(),
			IsAlive:             p.IsAlive,
			Kills:               p.Kills,
			Deaths:              p.Deaths,
		})
	}

	projectiles := make([]proto.ProjectileState, 0, len(m.projectiles))
	for _, pid := range m.sortedProjectileIDs() {
		p := m.projectiles[pid]
		projectiles = append(projectiles, proto.ProjectileState{
			ID:       p.ID,
			WeaponID: p.WeaponID,
			OwnerID:  p.OwnerID,
			Position: proto.Vec2{X: p.Position.X, Y: p.Position.Y},
			Velocity: proto.Vec2{X: p.Velocity.X, Y: p.Velocity.Y},
			Damage:   p.Damage,
		})
	}

	active := m.mods.activeSnapshot(now)
	mods := make([]proto.PhysicsModification, 0, len(active))
	for _, mod := range active {
		mods = append(mods, modificationToProto(mod))
	}

	return proto.GameStateUpdate{
		MatchID:     m.ID,
		Status:      string(m.status),
		Tick:        m.tick,
		ServerTime:  now.UnixMilli(),
		Players:     players,
		Projectiles: projectiles,
		Physics: proto.PhysicsSnapshot{
			Gravity:         m.physics.Gravity,
			Friction:        m.physics.Friction,
			Restitution:     m.physics.Restitution,
			TimeScale:       m.physics.TimeScale,
			ProjectileSpeed: m.physics.ProjectileSpeed,
			Active:          mods,
		},
		WinnerID: m.winnerID,
	}
}

// broadcastState hands the tick's snapshot to every connected player.
// Delivery is fire-and-forget: slow consumers are the hub's problem, never
// the tick's.
func (m *Match) broadcastState(now time.Time) {
	frame, err := proto.Encode(proto.TypeGameStateUpdate, m.Snapshot(now), now)
	if err != nil {
		m.logger.Errorw("failed to encode state snapshot", "err", err)
		return
	}
	for _, id := range m.sortedPlayerIDs() {
		if m.players[id].disconnected {
			continue
		}
		m.sender.Send(id, frame)
	}
	m.Metrics.Broadcasts.Add(1)
}

// broadcastFrame sends a typed event to every connected player.
func (m *Match) broadcastFrame(msgType string, payload any, now time.Time) {
	frame, err := proto.Encode(msgType, payload, now)
	if err != nil {
		m.logger.Errorw("failed to encode broadcast", "type", msgType, "err", err)
		return
	}
	for _, id := range m.sortedPlayerIDs() {
		if m.players[id].disconnected {
			continue
		}
		m.sender.Send(id, frame)
	}
}

func (m *Match) sendFrame(playerID, msgType string, payload any, now time.Time) {
	frame, err := proto.Encode(msgType, payload, now)
	if err != nil {
		m.logger.Errorw("failed to encode message", "type", msgType, "err", err)
		return
	}
	m.sender.Send(playerID, frame)
}

func (m *Match) sendWeaponGenerated(playerID string, payload proto.WeaponGenerated, now time.Time) {
	m.sendFrame(playerID, proto.TypeWeaponGenerated, payload, now)
}

// sendReject answers an illegal action with an explicit reason code so the
// client can show feedback instead of a dead button.
func (m *Match) sendReject(playerID, request, reason string, now time.Time) {
	m.sendFrame(playerID, proto.TypeReject, proto.Reject{Request: request, Reason: reason}, now)
}
