package proto

// InputState mirrors the client control surface. Timestamp is the client's
// epoch-ms send time and drives the server's staleness window.
type InputState struct {
	Left      bool    `json:"left"`
	Right     bool    `json:"right"`
	Up        bool    `json:"up"`
	Down      bool    `json:"down"`
	Fire      bool    `json:"fire"`
	MouseX    float64 `json:"mouseX"`
	MouseY    float64 `json:"mouseY"`
	Timestamp int64   `json:"timestamp"`
}

// PlayerConnect introduces a player before any match is formed.
type PlayerConnect struct {
	Name string `json:"name"`
}

// PlayerInput carries one input sample.
type PlayerInput struct {
	Input InputState `json:"input"`
}

// WeaponGenerate asks the server for a new generated weapon.
type WeaponGenerate struct {
	Prompt   string `json:"prompt"`
	PlayerID string `json:"player_id"`
	MatchID  string `json:"match_id"`
}

// WeaponGenerated reports the outcome of a generation request. Success covers
// fallback weapons too; Error is only set for legality rejections.
type WeaponGenerated struct {
	Success          bool    `json:"success"`
	Weapon           *Weapon `json:"weapon,omitempty"`
	Error            string  `json:"error,omitempty"`
	GenerationTimeMs int64   `json:"generationTimeMs"`
}

// WeaponUse fires or triggers an owned weapon.
type WeaponUse struct {
	WeaponID       string `json:"weapon_id"`
	TargetPosition Vec2   `json:"target_position"`
}

// MasterPrompt proposes a match-wide physics change in natural language.
type MasterPrompt struct {
	Prompt  string `json:"prompt"`
	MatchID string `json:"match_id"`
}

// MatchFound tells queued players their match exists and who is in it.
type MatchFound struct {
	MatchID string        `json:"match_id"`
	Players []MatchPlayer `json:"players"`
}

// MatchPlayer is the roster entry sent with MatchFound.
type MatchPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchStart announces the countdown has elapsed and input is accepted.
type MatchStart struct {
	MatchID  string `json:"match_id"`
	TickRate int    `json:"tick_rate"`
}

// MatchEnd carries the final outcome.
type MatchEnd struct {
	MatchID  string `json:"match_id"`
	WinnerID string `json:"winner_id,omitempty"`
	Reason   string `json:"reason"`
}

// Reject is the explicit refusal for illegal actions so clients can surface
// feedback instead of guessing why nothing happened.
type Reject struct {
	Request string `json:"request"`
	Reason  string `json:"reason"`
}

// QueueTimeout tells a waiting player matchmaking gave up.
type QueueTimeout struct {
	WaitedMs int64 `json:"waitedMs"`
}

// Vec2 is a 2D point or vector on the wire.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Weapon is the client-visible weapon shape.
type Weapon struct {
	ID           string           `json:"id"`
	Category     string           `json:"category"`
	Properties   WeaponProperties `json:"properties"`
	BalanceScore float64          `json:"balanceScore"`
	OwnerID      string           `json:"ownerPlayerId"`
}

// WeaponProperties are always inside their legal ranges by the time they
// reach the wire.
type WeaponProperties struct {
	Damage           float64            `json:"damage"`
	Speed            float64            `json:"speed"`
	Range            float64            `json:"range"`
	Ammo             int                `json:"ammo"`
	CooldownMs       int                `json:"cooldownMs"`
	SpecialEffect    string             `json:"specialEffect,omitempty"`
	EffectParameters map[string]float64 `json:"effectParameters,omitempty"`
}

// PhysicsModification is the client-visible record of an applied rule change.
type PhysicsModification struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Parameters map[string]float64 `json:"parameters"`
	DurationMs int64              `json:"durationMs"`
	StartTime  int64              `json:"startTime"`
	MatchID    string             `json:"matchId"`
}

// PlayerState is the per-player slice of a state snapshot.
type PlayerState struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Health              float64  `json:"health"`
	Position            Vec2     `json:"position"`
	Velocity            Vec2     `json:"velocity"`
	Weapons             []Weapon `json:"weapons"`
	WeaponCooldownUntil int64    `json:"weaponCooldownUntil"`
	IsAlive             bool     `json:"isAlive"`
	Kills               int      `json:"kills"`
	Deaths              int      `json:"deaths"`
}

// ProjectileState is the per-projectile slice of a state snapshot.
type ProjectileState struct {
	ID       uint64  `json:"id"`
	WeaponID string  `json:"weaponId"`
	OwnerID  string  `json:"ownerId"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Damage   float64 `json:"damage"`
}

// PhysicsSnapshot is the resolved physics state clients simulate against.
type PhysicsSnapshot struct {
	Gravity         float64               `json:"gravity"`
	Friction        float64               `json:"friction"`
	Restitution     float64               `json:"restitution"`
	TimeScale       float64               `json:"timeScale"`
	ProjectileSpeed float64               `json:"projectileSpeed"`
	Active          []PhysicsModification `json:"activeModifications,omitempty"`
}

// GameStateUpdate is the full authoritative snapshot broadcast each tick.
// Entries are sorted by ID so identical states serialize identically.
type GameStateUpdate struct {
	MatchID     string            `json:"match_id"`
	Status      string            `json:"status"`
	Tick        uint64            `json:"tick"`
	ServerTime  int64             `json:"serverTime"`
	Players     []PlayerState     `json:"players"`
	Projectiles []ProjectileState `json:"projectiles"`
	Physics     PhysicsSnapshot   `json:"physics"`
	WinnerID    string            `json:"winnerId,omitempty"`
}
