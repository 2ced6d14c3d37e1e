package game

import "time"

// Run drives the fixed-timestep loop until the match reaches a terminal
// state and the spectator grace expires, or Close is called. One goroutine
// per match; nothing else mutates simulation state.
func (m *Match) Run() {
	defer close(m.done)

	interval := m.cfg.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = interval.Seconds()
			}
			last = now

			start := time.Now()
			m.step(now, dt)
			m.Metrics.addTick(time.Since(start).Nanoseconds())
		}
	}
}

// step advances the match by one tick. The phase order is fixed so identical
// input logs replay to identical state: staged commands, physics resolution,
// movement, projectiles, collisions, condition damage, victory, broadcast.
func (m *Match) step(now time.Time, dt float64) {
	m.tick++
	m.drainCommands(now)

	switch m.status {
	case StatusStarting:
		if !now.Before(m.countdownUntil) {
			m.beginCombat(now)
		}
	case StatusActive:
		m.physics = m.mods.resolve(now)

		for _, id := range m.sortedPlayerIDs() {
			p := m.players[id]
			integrateMovement(p, m.physics, dt, now)
			if p.fireHeld && p.IsAlive {
				if w, ok := p.currentWeapon(); ok {
					// Held fire is best-effort: cooldown and ammo rejections
					// are silent, unlike explicit weapon_use.
					_ = m.fireWeapon(p, w, p.aim, now)
				}
			}
		}

		for _, pid := range m.sortedProjectileIDs() {
			proj := m.projectiles[pid]
			if !advanceProjectile(proj, m.physics, dt, now) {
				delete(m.projectiles, pid)
			}
		}

		m.resolveCollisions(now)
		m.applyConditions(dt, now)

		if winner, reason, done := m.evaluateVictory(now); done {
			m.finish(winner, reason, now)
		}
	case StatusFinished, StatusCancelled:
		// Keep broadcasting the terminal snapshot through the grace window.
	}

	m.broadcastState(now)
}

// beginCombat flips starting to active and tells clients input now counts.
func (m *Match) beginCombat(now time.Time) {
	if !m.transition(StatusActive, now) {
		return
	}
	m.startTime = now
	m.logger.Infow("match active", "players", len(m.players))
	m.broadcastFrame(protoTypeMatchStart, m.matchStartPayload(), now)
}

// finish records the outcome and schedules teardown after the spectator
// grace window.
func (m *Match) finish(winnerID, reason string, now time.Time) {
	if !m.transition(StatusFinished, now) {
		return
	}
	m.winnerID = winnerID
	m.endReason = reason
	m.endTime = now
	m.logger.Infow("match finished", "winner", winnerID, "reason", reason)
	m.broadcastFrame(protoTypeMatchEnd, m.matchEndPayload(), now)
	m.scheduleTeardown()
}

// cancel ends the match without a winner. Internal invariant violations and
// pre-elimination disconnect drains land here; the process never crashes on
// a single match's fault.
func (m *Match) cancel(reason string, now time.Time) {
	if m.status == StatusFinished || m.status == StatusCancelled {
		return
	}
	m.forceStatus(StatusCancelled, now)
	m.endReason = reason
	m.endTime = now
	m.logger.Warnw("match cancelled", "reason", reason)
	m.broadcastFrame(protoTypeMatchEnd, m.matchEndPayload(), now)
	m.scheduleTeardown()
}

func (m *Match) scheduleTeardown() {
	grace := m.cfg.SpectatorGrace
	time.AfterFunc(grace, m.Close)
}

// Close stops the tick loop and notifies the owner. Safe to call more than
// once.
func (m *Match) Close() {
	m.stopOnce.Do(func() {
		close(m.stop)
		go func() {
			<-m.done
			if m.onClosed != nil {
				m.onClosed(m)
			}
		}()
	})
}

// Done exposes loop termination for tests and the manager.
func (m *Match) Done() <-chan struct{} { return m.done }
