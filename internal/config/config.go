package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every tunable the server reads at startup. Values come from
// the environment (optionally seeded from a .env file) with the defaults
// below; nothing else in the process reads os.Getenv directly.
type Config struct {
	ListenAddr string
	LogFile    string

	// Matchmaking.
	MinPlayers   int
	MaxPlayers   int
	QuorumWait   time.Duration // wait for a full lobby before starting with a quorum
	QueueTimeout time.Duration // give up on waiters that never reach a quorum

	// Match lifecycle.
	TickRate        int
	CountdownDelay  time.Duration
	MatchDuration   time.Duration
	SpectatorGrace  time.Duration
	CommandCapacity int

	// Input acceptance window.
	MaxInputLag        time.Duration
	ClockSkewTolerance time.Duration

	// Weapon generation.
	GeneratorURL     string
	GenerationBudget time.Duration
	WeaponCooldown   time.Duration

	// Physics modifications.
	ModificationMinDuration time.Duration
	ModificationMaxDuration time.Duration
	AutoModMinInterval      time.Duration
	AutoModMaxInterval      time.Duration

	// Connections.
	SendQueueSize int
	IdleTimeout   time.Duration
}

// Load reads configuration from the environment. A missing .env file is not
// an error; explicit environment variables always win over file contents.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:              envString("LISTEN_ADDR", ":8080"),
		LogFile:                 envString("LOG_FILE", "server.log"),
		MinPlayers:              2,
		MaxPlayers:              4,
		QuorumWait:              10 * time.Second,
		QueueTimeout:            60 * time.Second,
		TickRate:                20,
		CountdownDelay:          3 * time.Second,
		MatchDuration:           90 * time.Second,
		SpectatorGrace:          10 * time.Second,
		CommandCapacity:         256,
		MaxInputLag:             time.Second,
		ClockSkewTolerance:      2 * time.Second,
		GeneratorURL:            envString("GENERATOR_URL", ""),
		GenerationBudget:        3 * time.Second,
		WeaponCooldown:          12 * time.Second,
		ModificationMinDuration: 8 * time.Second,
		ModificationMaxDuration: 25 * time.Second,
		AutoModMinInterval:      30 * time.Second,
		AutoModMaxInterval:      45 * time.Second,
		SendQueueSize:           64,
		IdleTimeout:             60 * time.Second,
	}

	var err error
	if cfg.MinPlayers, err = envInt("MIN_PLAYERS", cfg.MinPlayers); err != nil {
		return cfg, err
	}
	if cfg.MaxPlayers, err = envInt("MAX_PLAYERS", cfg.MaxPlayers); err != nil {
		return cfg, err
	}
	if cfg.TickRate, err = envInt("TICK_RATE", cfg.TickRate); err != nil {
		return cfg, err
	}
	if cfg.QueueTimeout, err = envDuration("QUEUE_TIMEOUT", cfg.QueueTimeout); err != nil {
		return cfg, err
	}
	if cfg.MatchDuration, err = envDuration("MATCH_DURATION", cfg.MatchDuration); err != nil {
		return cfg, err
	}
	if cfg.GenerationBudget, err = envDuration("GENERATION_BUDGET", cfg.GenerationBudget); err != nil {
		return cfg, err
	}

	return cfg.normalized()
}

// normalized clamps nonsense values back into usable ranges instead of
// refusing to boot over a stray environment variable.
func (c Config) normalized() (Config, error) {
	if c.MinPlayers < 2 {
		c.MinPlayers = 2
	}
	if c.MaxPlayers < c.MinPlayers {
		c.MaxPlayers = c.MinPlayers
	}
	if c.TickRate < 20 {
		c.TickRate = 20
	} else if c.TickRate > 60 {
		c.TickRate = 60
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = 256
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = 64
	}
	if c.ModificationMinDuration <= 0 || c.ModificationMaxDuration < c.ModificationMinDuration {
		return c, fmt.Errorf("config: invalid modification duration bounds [%v, %v]",
			c.ModificationMinDuration, c.ModificationMaxDuration)
	}
	return c, nil
}

// TickInterval returns the wall-clock spacing between simulation ticks.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func envString(key, fallback string) string {
	if raw := os.Getenv(key); raw != "" {
		return raw
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return value, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("config: invalid %s=%q: %w", key, raw, err)
	}
	return value, nil
}
