package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinPlayers != 2 || cfg.MaxPlayers != 4 {
		t.Fatalf("player bounds = %d/%d, want 2/4", cfg.MinPlayers, cfg.MaxPlayers)
	}
	if cfg.TickRate != 20 {
		t.Fatalf("tick rate = %d, want 20", cfg.TickRate)
	}
	if cfg.TickInterval() != 50*time.Millisecond {
		t.Fatalf("tick interval = %v, want 50ms", cfg.TickInterval())
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("TICK_RATE", "30")
	t.Setenv("MATCH_DURATION", "2m")
	t.Setenv("GENERATOR_URL", "http://localhost:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("tick rate = %d, want 30", cfg.TickRate)
	}
	if cfg.MatchDuration != 2*time.Minute {
		t.Fatalf("match duration = %v, want 2m", cfg.MatchDuration)
	}
	if cfg.GeneratorURL != "http://localhost:9999" {
		t.Fatalf("generator url = %q", cfg.GeneratorURL)
	}
}

func TestLoadRejectsUnparseableValues(t *testing.T) {
	t.Setenv("TICK_RATE", "fast")
	if _, err := Load(); err == nil {
		t.Fatalf("invalid TICK_RATE accepted")
	}
}

func TestNormalizedClampsNonsense(t *testing.T) {
	cfg := Config{
		MinPlayers:              1,
		MaxPlayers:              0,
		TickRate:                500,
		ModificationMinDuration: 8 * time.Second,
		ModificationMaxDuration: 25 * time.Second,
	}
	out, err := cfg.normalized()
	if err != nil {
		t.Fatalf("normalized: %v", err)
	}
	if out.MinPlayers != 2 || out.MaxPlayers != 2 {
		t.Fatalf("player bounds = %d/%d, want 2/2", out.MinPlayers, out.MaxPlayers)
	}
	if out.TickRate != 60 {
		t.Fatalf("tick rate = %d, want clamped 60", out.TickRate)
	}
	if out.CommandCapacity != 256 || out.SendQueueSize != 64 {
		t.Fatalf("queue sizes = %d/%d", out.CommandCapacity, out.SendQueueSize)
	}

	cfg.ModificationMaxDuration = time.Second
	if _, err := cfg.normalized(); err == nil {
		t.Fatalf("inverted modification bounds accepted")
	}
}
