package game

import "time"

// Player is the client-visible slice of a combatant. It is mutated only by
// the owning match goroutine; connections submit intent, never state.
type Player struct {
	ID                  string
	Name                string
	Health              float64
	Position            Vec2
	Velocity            Vec2
	Weapons             []Weapon
	WeaponCooldownUntil time.Time
	IsAlive             bool
	Kills               int
	Deaths              int
}

// playerState wraps Player with the book-keeping the simulation needs but
// clients never see.
type playerState struct {
	Player

	// Latest accepted input, applied at the top of each tick.
	intentMove Vec2
	fireHeld   bool
	aim        Vec2
	lastInput  time.Time // client timestamp of the last applied sample

	// One generation request may be in flight at a time.
	pendingTicket string

	// Per-weapon fire cooldowns, keyed by weapon ID.
	lastFired map[string]time.Time

	conditions   []condition
	disconnected bool
}

func newPlayerState(id, name string, spawn Vec2) *playerState {
	return &playerState{
		Player: Player{
			ID:       id,
			Name:     name,
			Health:   playerMaxHealth,
			Position: spawn,
			IsAlive:  true,
			Weapons:  make([]Weapon, 0, maxLoadoutSize),
		},
		lastFired: make(map[string]time.Time),
	}
}

// applyHealthDelta adjusts health, clamping into [0, max]. It reports whether
// the player died on this application.
func (p *playerState) applyHealthDelta(delta float64) bool {
	if !p.IsAlive {
		return false
	}
	p.Health += delta
	if p.Health > playerMaxHealth {
		p.Health = playerMaxHealth
	}
	if p.Health <= 0 {
		p.Health = 0
		p.IsAlive = false
		return true
	}
	return false
}

// weaponByID finds an owned weapon.
func (p *playerState) weaponByID(id string) (*Weapon, bool) {
	for i := range p.Weapons {
		if p.Weapons[i].ID == id {
			return &p.Weapons[i], true
		}
	}
	return nil, false
}

// attachWeapon appends to the loadout, evicting the oldest weapon when the
// ring of five is full.
func (p *playerState) attachWeapon(w Weapon) {
	if len(p.Weapons) >= maxLoadoutSize {
		evicted := p.Weapons[0]
		delete(p.lastFired, evicted.ID)
		p.Weapons = append(p.Weapons[:0], p.Weapons[1:]...)
	}
	p.Weapons = append(p.Weapons, w)
}

// currentWeapon returns the most recently attached weapon, used when the fire
// button is held without an explicit weapon_use.
func (p *playerState) currentWeapon() (*Weapon, bool) {
	if len(p.Weapons) == 0 {
		return nil, false
	}
	return &p.Weapons[len(p.Weapons)-1], true
}
