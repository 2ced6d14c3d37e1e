package game

import "sync/atomic"

// Metrics counts per-match runtime events. All counters are atomic so the
// HTTP diagnostics endpoint can read them while the match goroutine writes.
type Metrics struct {
	TickCount        atomic.Int64
	InputsAccepted   atomic.Int64
	InputsStale      atomic.Int64
	InputsSkewed     atomic.Int64
	InputsSuperseded atomic.Int64
	CommandsDropped  atomic.Int64
	ModsAccepted     atomic.Int64
	ModsRejected     atomic.Int64
	WeaponsAttached  atomic.Int64
	Fallbacks        atomic.Int64
	Broadcasts       atomic.Int64
	TotalTickNs      atomic.Int64
}

func (m *Metrics) addTick(ns int64) {
	m.TickCount.Add(1)
	m.TotalTickNs.Add(ns)
}

// Snapshot returns a read-only copy for diagnostics output.
func (m *Metrics) Snapshot() map[string]any {
	ticks := m.TickCount.Load()
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(m.TotalTickNs.Load()) / float64(ticks) / 1e6
	}
	return map[string]any{
		"tick_count":        ticks,
		"inputs_accepted":   m.InputsAccepted.Load(),
		"inputs_stale":      m.InputsStale.Load(),
		"inputs_skewed":     m.InputsSkewed.Load(),
		"inputs_superseded": m.InputsSuperseded.Load(),
		"commands_dropped":  m.CommandsDropped.Load(),
		"mods_accepted":     m.ModsAccepted.Load(),
		"mods_rejected":     m.ModsRejected.Load(),
		"weapons_attached":  m.WeaponsAttached.Load(),
		"fallback_weapons":  m.Fallbacks.Load(),
		"broadcasts":        m.Broadcasts.Load(),
		"avg_tick_ms":       avgMs,
	}
}
