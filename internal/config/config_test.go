package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/counter"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Parallel()

	content := `
server:
  host: "127.0.0.1"
  port: 8080
  max_shoes: 500
  allowed_origins:
    - "http://localhost:3000"

redis:
  enabled: true
  addr: "redis:6379"
  password: "secret"
  db: 1

table:
  decks: 6
  penetration: 0.8
  blackjack_payout: 1.2
  hit_split_aces: true
  counting_system: wong_halves

betting:
  amount: 50
  only_when_favorable: true
  favorable_threshold: 1.5

side_bets:
  perfect_pairs: 5
  twenty_one_plus_three: 2.5

simulation:
  shoes: 200
  workers: 4
  seed: 99
  starting_bankroll: 5000
`
	cfg, err := Load(writeFile(t, "config.yaml", content))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 500, cfg.Server.MaxShoes)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 1, cfg.Redis.DB)
	assert.Equal(t, 6, cfg.Table.Decks)
	assert.InDelta(t, 0.8, cfg.Table.Penetration, 1e-9)
	assert.True(t, cfg.Table.HitSplitAces)
	assert.Equal(t, uint64(99), cfg.Simulation.Seed)

	sc, err := cfg.Session()
	require.NoError(t, err)
	assert.Equal(t, counter.WongHalves, sc.System)
	assert.InDelta(t, 1.2, sc.Rules.BlackjackPayout, 1e-9)
	assert.InDelta(t, 5.0, sc.Rules.SideBets.PerfectPairs, 1e-9)
	assert.InDelta(t, 2.5, sc.Rules.SideBets.TwentyOnePlusThree, 1e-9)
	assert.True(t, sc.Bet.OnlyWhenFavorable)
	assert.InDelta(t, 1.5, sc.Bet.Threshold, 1e-9)

	opts, err := cfg.SimOptions()
	require.NoError(t, err)
	assert.Equal(t, 200, opts.Shoes)
	assert.Equal(t, 4, opts.Workers)
	assert.InDelta(t, 5000.0, opts.StartingBankroll, 1e-9)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeFile(t, "invalid.yaml", "invalid: yaml: :::"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeFile(t, "empty.yaml", "{}"))
	require.NoError(t, err)

	assert.Equal(t, defaultHost, cfg.Server.Host)
	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultRedisAddr, cfg.Redis.Addr)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, defaultDecks, cfg.Table.Decks)
	assert.Equal(t, defaultMaxDecks, cfg.Server.MaxDecks)
	assert.InDelta(t, defaultPenetration, cfg.Table.Penetration, 1e-9)
	assert.Equal(t, defaultCountingSystem, cfg.Table.CountingSystem)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative decks", func(c *Config) { c.Table.Decks = -1 }},
		{"too many decks", func(c *Config) { c.Table.Decks = MaxDecks + 1 }},
		{"huge decks", func(c *Config) { c.Table.Decks = 1 << 60 }},
		{"max decks above limit", func(c *Config) { c.Server.MaxDecks = MaxDecks + 1 }},
		{"penetration at one", func(c *Config) { c.Table.Penetration = 1 }},
		{"negative penetration", func(c *Config) { c.Table.Penetration = -0.5 }},
		{"unknown counting system", func(c *Config) { c.Table.CountingSystem = "KO" }},
		{"negative bet", func(c *Config) { c.Betting.Amount = -5 }},
		{"negative side bet", func(c *Config) { c.SideBets.PerfectPairs = -1 }},
		{"negative workers", func(c *Config) { c.Simulation.Workers = -2 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"BJSIM_REDIS_ADDR":      "cache:6380",
		"BJSIM_REDIS_ENABLED":   "true",
		"BJSIM_DECKS":           "2",
		"BJSIM_PENETRATION":     "0.6",
		"BJSIM_COUNTING_SYSTEM": "WONG_HALVES",
		"BJSIM_SEED":            "12345",
		"BJSIM_SERVER_PORT":     "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.Table.Decks)
	assert.InDelta(t, 0.6, cfg.Table.Penetration, 1e-9)
	assert.Equal(t, "WONG_HALVES", cfg.Table.CountingSystem)
	assert.Equal(t, uint64(12345), cfg.Simulation.Seed)
	assert.Equal(t, defaultPort, cfg.Server.Port, "empty values are ignored")

	bad := Default()
	err := bad.ApplyEnv(func(k string) (string, bool) {
		if k == "BJSIM_SHOES" {
			return "many", true
		}
		return "", false
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}

func TestApplyEnv_ThenValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, key, value string
	}{
		{"penetration past the shoe", "BJSIM_PENETRATION", "2"},
		{"decks above the cap", "BJSIM_DECKS", "100000"},
		{"port out of range", "BJSIM_SERVER_PORT", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
				return tt.value, k == tt.key
			}), "overrides parse; ranges are checked by Validate")
			assert.ErrorIs(t, cfg.Validate(), apperrors.ErrInvalidConfig)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, ".env", "BJSIM_SHOES=42\n# comment\nBJSIM_BET_AMOUNT=10\n")
	env, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "42", env["BJSIM_SHOES"])

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(EnvLookup(env)))
	assert.Equal(t, 42, cfg.Simulation.Shoes)
	assert.InDelta(t, 10.0, cfg.Betting.Amount, 1e-9)

	missing, err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEngine(t *testing.T) {
	t.Parallel()

	cfg := Default()
	engine, err := cfg.Engine()
	require.NoError(t, err)
	assert.NotNil(t, engine.Tables())

	cfg.Table.StrategyFile = "/nonexistent/strategy.yaml"
	_, err = cfg.Engine()
	assert.Error(t, err)
}
