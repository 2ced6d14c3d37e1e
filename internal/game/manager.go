package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rift-arena/server/internal/config"
	"rift-arena/server/internal/proto"
)

// Manager owns every live match and the player-to-match index. It is the
// only structure shared across matches, guarded by a single mutex; match
// internals stay single-writer.
type Manager struct {
	cfg    config.Config
	logger *zap.SugaredLogger
	sender Sender
	gen    Generator

	mu       sync.Mutex
	matches  map[string]*Match
	byPlayer map[string]string

	autoModIndex int
}

// NewManager wires the registry. The sender and generator handles are shared
// by every match the manager creates.
func NewManager(cfg config.Config, sender Sender, gen Generator, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sender:   sender,
		gen:      gen,
		matches:  make(map[string]*Match),
		byPlayer: make(map[string]string),
	}
}

// StartMatch instantiates a match for a formed roster, starts its loop, and
// notifies the players. Matchmaking calls this as its handoff.
func (mgr *Manager) StartMatch(roster []RosterEntry) string {
	id := uuid.NewString()
	m := NewMatch(id, roster, mgr.cfg, mgr.sender, mgr.gen, mgr.logger)
	m.onClosed = mgr.removeMatch

	mgr.mu.Lock()
	mgr.matches[id] = m
	for _, entry := range roster {
		mgr.byPlayer[entry.PlayerID] = id
	}
	mgr.mu.Unlock()

	mgr.logger.Infow("match created", "match", id, "players", len(roster))

	now := time.Now()
	found := proto.MatchFound{MatchID: id}
	for _, entry := range roster {
		found.Players = append(found.Players, proto.MatchPlayer{ID: entry.PlayerID, Name: entry.Name})
	}
	if frame, err := proto.Encode(proto.TypeMatchFound, found, now); err == nil {
		for _, entry := range roster {
			mgr.sender.Send(entry.PlayerID, frame)
		}
	}

	go m.Run()
	m.Start()
	return id
}

func (mgr *Manager) removeMatch(m *Match) {
	mgr.mu.Lock()
	delete(mgr.matches, m.ID)
	for _, playerID := range m.PlayerIDs() {
		if mgr.byPlayer[playerID] == m.ID {
			delete(mgr.byPlayer, playerID)
		}
	}
	mgr.mu.Unlock()
	mgr.logger.Infow("match removed", "match", m.ID)
}

// MatchFor resolves the match a player belongs to.
func (mgr *Manager) MatchFor(playerID string) (*Match, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	id, ok := mgr.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	m, ok := mgr.matches[id]
	return m, ok
}

// Match resolves a match by ID.
func (mgr *Manager) Match(id string) (*Match, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	m, ok := mgr.matches[id]
	return m, ok
}

// HandleDisconnect routes a dropped connection into the owning match's
// drain path. Unknown players are a no-op: they were only ever queued.
func (mgr *Manager) HandleDisconnect(playerID string) {
	if m, ok := mgr.MatchFor(playerID); ok {
		m.RequestLeave(playerID)
	}
}

// autoModRotation cycles through system-generated rule changes so automatic
// modifications stay deterministic and within proposal bounds.
var autoModRotation = []ModificationCandidate{
	{Type: string(ModGravity), Parameters: map[string]float64{"multiplier": 0.5}, DurationMs: 12000},
	{Type: string(ModTimeScale), Parameters: map[string]float64{"multiplier": 0.5}, DurationMs: 10000},
	{Type: string(ModFriction), Parameters: map[string]float64{"multiplier": 2.0}, DurationMs: 15000},
	{Type: string(ModBounce), Parameters: map[string]float64{"multiplier": 2.5}, DurationMs: 12000},
	{Type: string(ModWeaponBehavior), Parameters: map[string]float64{"multiplier": 1.5}, DurationMs: 10000},
}

// ProposeAutoModifications pushes the next rotation entry to every active
// match through the same proposal path player prompts use. The scheduler
// calls this every 30-45 seconds.
func (mgr *Manager) ProposeAutoModifications() {
	mgr.mu.Lock()
	candidate := autoModRotation[mgr.autoModIndex%len(autoModRotation)]
	mgr.autoModIndex++
	active := make([]*Match, 0, len(mgr.matches))
	for _, m := range mgr.matches {
		active = append(active, m)
	}
	mgr.mu.Unlock()

	for _, m := range active {
		if m.Status() == StatusActive {
			m.ProposeSystemModification(candidate)
		}
	}
}

// Sweep is a backstop reaper: terminal matches tear themselves down after
// the spectator grace, but a missed timer must not leak a goroutine forever.
func (mgr *Manager) Sweep() {
	now := time.Now()
	mgr.mu.Lock()
	stale := make([]*Match, 0)
	for _, m := range mgr.matches {
		if ended, ok := m.EndedAt(); ok && now.After(ended.Add(2*mgr.cfg.SpectatorGrace)) {
			stale = append(stale, m)
		}
	}
	mgr.mu.Unlock()

	for _, m := range stale {
		m.Close()
	}
}

// MetricsSnapshot aggregates per-match counters for diagnostics.
func (mgr *Manager) MetricsSnapshot() map[string]any {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	out := make(map[string]any, len(mgr.matches))
	for id, m := range mgr.matches {
		out[id] = map[string]any{
			"status":  string(m.Status()),
			"metrics": m.Metrics.Snapshot(),
		}
	}
	return out
}
