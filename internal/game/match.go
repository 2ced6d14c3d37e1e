package game

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/proto"
)

// Sender delivers an encoded frame to one player's connection. The hub
// implements it; matches never touch sockets directly.
type Sender interface {
	Send(playerID string, frame []byte)
}

// Generator is the external text-to-content collaborator. Implementations
// must honour the context deadline; the match never waits on them inside a
// tick.
type Generator interface {
	GenerateWeapon(ctx context.Context, prompt string, pctx PromptContext) (WeaponCandidate, error)
	GenerateModification(ctx context.Context, prompt string, pctx PromptContext) (ModificationCandidate, error)
}

// PromptContext gives the generator enough information to tailor output.
type PromptContext struct {
	MatchID  string
	PlayerID string
}

// RosterEntry is one matched player handed over by the matchmaking queue.
type RosterEntry struct {
	PlayerID string
	Name     string
}

type commandType int

const (
	cmdInput commandType = iota
	cmdLeave
	cmdWeaponGenerate
	cmdWeaponUse
	cmdMasterPrompt
	cmdAttachResult
	cmdModResult
	cmdSystemMod
	cmdStart
)

// command is the single envelope crossing from connection goroutines into
// the match goroutine. The match drains the queue at the top of every tick,
// which keeps MatchState single-writer.
type command struct {
	typ      commandType
	playerID string
	input    proto.InputState
	use      proto.WeaponUse
	prompt   string
	attach   *attachResult
	mod      ModificationCandidate
}

// attachResult carries an asynchronous generation outcome back onto the tick
// thread.
type attachResult struct {
	candidate WeaponCandidate
	fallback  bool
	startedAt time.Time
}

// spawnPoints places up to four players in opposing corners; extras reuse
// points, which only matters if maxPlayers is raised past four.
var spawnPoints = []Vec2{
	{spawnMargin, spawnMargin},
	{arenaWidth - spawnMargin, arenaHeight - spawnMargin},
	{arenaWidth - spawnMargin, spawnMargin},
	{spawnMargin, arenaHeight - spawnMargin},
}

// masterPromptInterval rate-limits match-wide rule change requests across
// all players in a match.
const masterPromptInterval = 15 * time.Second

// Match is one isolated game. All fields below stateMu are owned by the
// match goroutine; external callers interact through the command channel and
// the read-only accessors.
type Match struct {
	ID string

	cfg     config.Config
	logger  *zap.SugaredLogger
	sender  Sender
	gen     Generator
	Metrics *Metrics

	commands chan command
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	onClosed func(m *Match)

	stateMu      sync.RWMutex
	publicStatus MatchStatus
	publicEnded  time.Time

	// Simulation state, match goroutine only.
	status             MatchStatus
	players            map[string]*playerState
	projectiles        map[uint64]*Projectile
	nextProjectileID   uint64
	mods               *modificationEngine
	physics            PhysicsState
	eliminations       int
	startTime          time.Time
	endTime            time.Time
	countdownUntil     time.Time
	winnerID           string
	endReason          string
	lastMasterPromptAt time.Time
	tick               uint64
}

// NewMatch constructs a match in waiting status with its full roster spawned
// and armed with the starter weapon. Call Start to begin the countdown and
// Run to drive ticks.
func NewMatch(id string, roster []RosterEntry, cfg config.Config, sender Sender, gen Generator, logger *zap.SugaredLogger) *Match {
	m := &Match{
		ID:           id,
		cfg:          cfg,
		logger:       logger.With("match", id),
		sender:       sender,
		gen:          gen,
		Metrics:      &Metrics{},
		commands:     make(chan command, cfg.CommandCapacity),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		status:       StatusWaiting,
		publicStatus: StatusWaiting,
		players:      make(map[string]*playerState),
		projectiles:  make(map[uint64]*Projectile),
		mods:         newModificationEngine(id, cfg.ModificationMinDuration, cfg.ModificationMaxDuration),
		physics:      basePhysics(),
	}
	for i, entry := range roster {
		p := newPlayerState(entry.PlayerID, entry.Name, spawnPoints[i%len(spawnPoints)])
		category, props := clampCandidate(starterCandidate())
		p.attachWeapon(Weapon{
			ID:           id + "-starter-" + entry.PlayerID,
			Category:     category,
			Properties:   props,
			BalanceScore: balanceScore(props),
			OwnerID:      entry.PlayerID,
		})
		m.players[entry.PlayerID] = p
	}
	return m
}

// Status is safe to call from any goroutine.
func (m *Match) Status() MatchStatus {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.publicStatus
}

// PlayerIDs lists the roster; membership never changes after construction.
func (m *Match) PlayerIDs() []string {
	return m.sortedPlayerIDs()
}

// Start begins the pre-match countdown. The transition itself happens on the
// match goroutine at the next tick.
func (m *Match) Start() {
	m.stage(command{typ: cmdStart})
}

// stage enqueues without blocking; a full queue drops the command and counts
// it, never stalling the caller or the tick.
func (m *Match) stage(cmd command) bool {
	select {
	case m.commands <- cmd:
		return true
	default:
		m.Metrics.CommandsDropped.Add(1)
		return false
	}
}

// StageInput submits one input sample for the next tick.
func (m *Match) StageInput(playerID string, input proto.InputState) {
	m.stage(command{typ: cmdInput, playerID: playerID, input: input})
}

// RequestLeave runs the disconnect-drain path on the tick thread.
func (m *Match) RequestLeave(playerID string) {
	m.stage(command{typ: cmdLeave, playerID: playerID})
}

// StageWeaponGenerate submits a weapon generation request.
func (m *Match) StageWeaponGenerate(playerID, prompt string) {
	m.stage(command{typ: cmdWeaponGenerate, playerID: playerID, prompt: prompt})
}

// StageWeaponUse submits an explicit weapon trigger.
func (m *Match) StageWeaponUse(playerID string, use proto.WeaponUse) {
	m.stage(command{typ: cmdWeaponUse, playerID: playerID, use: use})
}

// StageMasterPrompt submits a match-wide rule change request.
func (m *Match) StageMasterPrompt(playerID, prompt string) {
	m.stage(command{typ: cmdMasterPrompt, playerID: playerID, prompt: prompt})
}

// ProposeSystemModification feeds the auto scheduler through the same
// proposal path player prompts use.
func (m *Match) ProposeSystemModification(candidate ModificationCandidate) {
	m.stage(command{typ: cmdSystemMod, mod: candidate})
}

// drainCommands empties the queue and dispatches every staged command.
func (m *Match) drainCommands(now time.Time) {
	for {
		select {
		case cmd := <-m.commands:
			m.dispatch(cmd, now)
		default:
			return
		}
	}
}

func (m *Match) dispatch(cmd command, now time.Time) {
	switch cmd.typ {
	case cmdInput:
		m.handleInput(cmd.playerID, cmd.input, now)
	case cmdLeave:
		m.handleLeave(cmd.playerID, now)
	case cmdWeaponGenerate:
		m.handleWeaponGenerate(cmd.playerID, cmd.prompt, now)
	case cmdWeaponUse:
		m.handleWeaponUse(cmd.playerID, cmd.use, now)
	case cmdMasterPrompt:
		m.handleMasterPrompt(cmd.playerID, cmd.prompt, now)
	case cmdAttachResult:
		m.handleAttachResult(cmd.playerID, cmd.attach, now)
	case cmdModResult:
		m.handleModProposal(cmd.playerID, cmd.mod, now)
	case cmdSystemMod:
		m.handleModProposal("", cmd.mod, now)
	case cmdStart:
		if m.status == StatusWaiting {
			m.countdownUntil = now.Add(m.cfg.CountdownDelay)
			m.transition(StatusStarting, now)
		}
	}
}

func (m *Match) handleInput(playerID string, input proto.InputState, now time.Time) {
	if m.status != StatusActive {
		return // no input accepted before the countdown finishes
	}
	p, ok := m.players[playerID]
	if !ok || p.disconnected {
		return
	}
	switch m.acceptInput(p, input, now) {
	case "":
		m.Metrics.InputsAccepted.Add(1)
	case inputDropStale:
		m.Metrics.InputsStale.Add(1)
	case inputDropSkewed:
		m.Metrics.InputsSkewed.Add(1)
	case inputDropOrdered:
		m.Metrics.InputsSuperseded.Add(1)
	}
}

func (m *Match) handleLeave(playerID string, now time.Time) {
	p, ok := m.players[playerID]
	if !ok || p.disconnected {
		return
	}
	p.disconnected = true
	p.intentMove = Vec2{}
	p.fireHeld = false
	m.logger.Infow("player left match", "player", playerID, "status", m.status)

	switch m.status {
	case StatusWaiting, StatusStarting:
		delete(m.players, playerID)
		if len(m.players) < 2 {
			m.cancel("insufficient_players", now)
		}
	case StatusActive:
		p.IsAlive = false
		alive := 0
		for _, other := range m.players {
			if other.IsAlive {
				alive++
			}
		}
		if alive < 2 && m.eliminations == 0 {
			m.cancel("insufficient_players", now)
		}
		// Otherwise the victory check finishes the match and awards the win
		// by default on the next tick.
	}
}

// handleWeaponGenerate validates a generation request and, when legal,
// launches the asynchronous generator call. The tick loop never blocks on
// the collaborator; the outcome re-enters through the command queue.
func (m *Match) handleWeaponGenerate(playerID, prompt string, now time.Time) {
	p, ok := m.players[playerID]
	if !ok {
		return
	}
	if reason := m.generationLegality(p, now); reason != "" {
		m.sendWeaponGenerated(playerID, proto.WeaponGenerated{Success: false, Error: reason}, now)
		return
	}

	p.pendingTicket = m.ID + "-gen-" + playerID
	budget := m.cfg.GenerationBudget
	gen := m.gen
	matchID := m.ID
	go func() {
		started := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()

		result := attachResult{startedAt: started}
		candidate, err := gen.GenerateWeapon(ctx, prompt, PromptContext{MatchID: matchID, PlayerID: playerID})
		if err != nil {
			// The server's guarantee is that a weapon always appears.
			result.candidate = fallbackCandidate(prompt)
			result.fallback = true
		} else {
			result.candidate = candidate
		}
		m.stage(command{typ: cmdAttachResult, playerID: playerID, attach: &result})
	}()
}

func (m *Match) generationLegality(p *playerState, now time.Time) string {
	if m.status != StatusActive {
		return RejectMatchNotActive
	}
	if !p.IsAlive {
		return RejectNotAlive
	}
	if now.Before(p.WeaponCooldownUntil) {
		return RejectCooldownActive
	}
	if p.pendingTicket != "" {
		return RejectPendingRequest
	}
	return ""
}

// handleAttachResult clamps the candidate, attaches the weapon, and starts
// the generation cooldown. The cooldown begins at successful attach so a
// failed generation never costs the player their window.
func (m *Match) handleAttachResult(playerID string, result *attachResult, now time.Time) {
	p, ok := m.players[playerID]
	if !ok || result == nil {
		return
	}
	p.pendingTicket = ""

	elapsed := now.Sub(result.startedAt).Milliseconds()
	if m.status != StatusActive || !p.IsAlive || p.disconnected {
		m.sendWeaponGenerated(playerID, proto.WeaponGenerated{
			Success:          false,
			Error:            RejectNotAlive,
			GenerationTimeMs: elapsed,
		}, now)
		return
	}

	category, props := clampCandidate(result.candidate)
	weapon := Weapon{
		ID:           m.ID + "-w-" + p.ID + "-" + strconv.FormatUint(m.tick, 10),
		Category:     category,
		Properties:   props,
		BalanceScore: balanceScore(props),
		OwnerID:      p.ID,
	}
	p.attachWeapon(weapon)
	p.WeaponCooldownUntil = now.Add(m.cfg.WeaponCooldown)
	m.Metrics.WeaponsAttached.Add(1)
	if result.fallback {
		m.Metrics.Fallbacks.Add(1)
	}

	wire := weaponToProto(weapon)
	m.sendWeaponGenerated(playerID, proto.WeaponGenerated{
		Success:          true,
		Weapon:           &wire,
		GenerationTimeMs: elapsed,
	}, now)
}

func (m *Match) handleWeaponUse(playerID string, use proto.WeaponUse, now time.Time) {
	p, ok := m.players[playerID]
	if !ok {
		return
	}
	if m.status != StatusActive {
		m.sendReject(playerID, proto.TypeWeaponUse, RejectMatchNotActive, now)
		return
	}
	weapon, ok := p.weaponByID(use.WeaponID)
	if !ok {
		m.sendReject(playerID, proto.TypeWeaponUse, RejectUnknownWeapon, now)
		return
	}
	target := Vec2{X: use.TargetPosition.X, Y: use.TargetPosition.Y}
	if reason := m.fireWeapon(p, weapon, target, now); reason != "" {
		m.sendReject(playerID, proto.TypeWeaponUse, reason, now)
	}
}

// handleMasterPrompt translates a player's rule-change request through the
// generator and routes the result into the shared proposal path.
func (m *Match) handleMasterPrompt(playerID, prompt string, now time.Time) {
	if m.status != StatusActive {
		m.sendReject(playerID, proto.TypeMasterPrompt, RejectMatchNotActive, now)
		return
	}
	if !m.lastMasterPromptAt.IsZero() && now.Before(m.lastMasterPromptAt.Add(masterPromptInterval)) {
		m.sendReject(playerID, proto.TypeMasterPrompt, "master_prompt_rate_limited", now)
		return
	}
	m.lastMasterPromptAt = now

	budget := m.cfg.GenerationBudget
	gen := m.gen
	matchID := m.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()
		candidate, err := gen.GenerateModification(ctx, prompt, PromptContext{MatchID: matchID, PlayerID: playerID})
		if err != nil {
			candidate = fallbackModification(prompt)
		}
		m.stage(command{typ: cmdModResult, playerID: playerID, mod: candidate})
	}()
}

// handleModProposal is the single acceptance path for physics modifications,
// player-triggered and automatic alike.
func (m *Match) handleModProposal(playerID string, candidate ModificationCandidate, now time.Time) {
	if m.status != StatusActive {
		m.Metrics.ModsRejected.Add(1)
		if playerID != "" {
			m.sendReject(playerID, proto.TypeMasterPrompt, ErrMatchNotActive.Error(), now)
		}
		return
	}
	mod, err := m.mods.propose(candidate, now)
	if err != nil {
		m.Metrics.ModsRejected.Add(1)
		m.logger.Warnw("modification rejected", "type", candidate.Type, "reason", err)
		if playerID != "" {
			m.sendReject(playerID, proto.TypeMasterPrompt, err.Error(), now)
		}
		return
	}
	m.Metrics.ModsAccepted.Add(1)
	m.logger.Infow("modification applied",
		"type", mod.Type, "duration", mod.Duration, "multiplier", mod.multiplier(), "from", playerID)
	m.broadcastFrame(proto.TypePhysicsChanged, modificationToProto(mod), now)
}

// fallbackModification keeps master prompts functional when the generator is
// down: a deterministic low-gravity spell within legal bounds.
func fallbackModification(prompt string) ModificationCandidate {
	return ModificationCandidate{
		Type:       string(ModGravity),
		Parameters: map[string]float64{"multiplier": 0.5},
		DurationMs: 10000,
	}
}

// transition moves the lifecycle forward, refusing backward or skipping
// moves. An illegal transition is an internal invariant violation: the match
// is cancelled rather than left in an undefined state.
func (m *Match) transition(to MatchStatus, now time.Time) bool {
	if !transitionAllowed(m.status, to) {
		m.logger.Errorw("illegal status transition", "from", m.status, "to", to)
		if m.status == StatusActive || m.status == StatusStarting || m.status == StatusWaiting {
			m.forceStatus(StatusCancelled, now)
		}
		return false
	}
	m.forceStatus(to, now)
	return true
}

func (m *Match) forceStatus(to MatchStatus, now time.Time) {
	m.status = to
	m.stateMu.Lock()
	m.publicStatus = to
	if to == StatusFinished || to == StatusCancelled {
		m.publicEnded = now
	}
	m.stateMu.Unlock()
}

// EndedAt reports when the match reached a terminal state, if it has.
func (m *Match) EndedAt() (time.Time, bool) {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.publicEnded, !m.publicEnded.IsZero()
}

