package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/game/counter"
	"github.com/palemoky/blackjack-sim/internal/game/round"
	"github.com/palemoky/blackjack-sim/internal/game/session"
	"github.com/palemoky/blackjack-sim/internal/game/sidebet"
	"github.com/palemoky/blackjack-sim/internal/game/strategy"
	"github.com/palemoky/blackjack-sim/internal/sim"
)

const (
	defaultHost             = "0.0.0.0"
	defaultPort             = 1780
	defaultMaxShoes         = 10000
	defaultMaxDecks         = 8
	defaultRedisAddr        = "localhost:6379"
	defaultDecks            = 8
	defaultPenetration      = 0.75
	defaultBlackjackPayout  = 1.5
	defaultCountingSystem   = "HI_LO"
	defaultBetAmount        = 25
	defaultShoes            = 1000
	defaultStartingBankroll = 10000
)

// MaxDecks 单靴最多副数
const MaxDecks = session.MaxDecks

// envPrefix 环境变量前缀
const envPrefix = "BJSIM_"

// Config 模拟器配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Redis      RedisConfig      `yaml:"redis"`
	Table      TableConfig      `yaml:"table"`
	Betting    BettingConfig    `yaml:"betting"`
	SideBets   SideBetConfig    `yaml:"side_bets"`
	Simulation SimulationConfig `yaml:"simulation"`
}

// ServerConfig HTTP / WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxShoes       int      `yaml:"max_shoes"` // upper bound for one simulate request
	MaxDecks       int      `yaml:"max_decks"` // upper bound on decks a request may ask for
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// TableConfig 牌桌规则
type TableConfig struct {
	Decks           int     `yaml:"decks"`
	Penetration     float64 `yaml:"penetration"`
	BlackjackPayout float64 `yaml:"blackjack_payout"`
	HitSplitAces    bool    `yaml:"hit_split_aces"`
	CountingSystem  string  `yaml:"counting_system"`
	StrategyFile    string  `yaml:"strategy_file"` // empty uses the built-in tables
}

// BettingConfig 下注策略
type BettingConfig struct {
	Amount             float64 `yaml:"amount"`
	OnlyWhenFavorable  bool    `yaml:"only_when_favorable"`
	FavorableThreshold float64 `yaml:"favorable_threshold"`
}

// SideBetConfig flat side-bet stakes; zero disables a bet.
type SideBetConfig struct {
	PerfectPairs       float64 `yaml:"perfect_pairs"`
	TwentyOnePlusThree float64 `yaml:"twenty_one_plus_three"`
}

// SimulationConfig 模拟规模
type SimulationConfig struct {
	Shoes            int     `yaml:"shoes"`
	Workers          int     `yaml:"workers"`
	Seed             uint64  `yaml:"seed"`
	StartingBankroll float64 `yaml:"starting_bankroll"`
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 设置默认值
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxShoes == 0 {
		c.Server.MaxShoes = defaultMaxShoes
	}
	if c.Server.MaxDecks == 0 {
		c.Server.MaxDecks = defaultMaxDecks
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Table.Decks == 0 {
		c.Table.Decks = defaultDecks
	}
	if c.Table.Penetration == 0 {
		c.Table.Penetration = defaultPenetration
	}
	if c.Table.BlackjackPayout == 0 {
		c.Table.BlackjackPayout = defaultBlackjackPayout
	}
	if c.Table.CountingSystem == "" {
		c.Table.CountingSystem = defaultCountingSystem
	}
	if c.Betting.Amount == 0 {
		c.Betting.Amount = defaultBetAmount
	}
	if c.Simulation.Shoes == 0 {
		c.Simulation.Shoes = defaultShoes
	}
	if c.Simulation.StartingBankroll == 0 {
		c.Simulation.StartingBankroll = defaultStartingBankroll
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error
	if c.Table.Decks <= 0 || c.Table.Decks > MaxDecks {
		errs = append(errs, fmt.Errorf("table.decks must be in [1, %d], got %d", MaxDecks, c.Table.Decks))
	}
	if c.Server.MaxDecks <= 0 || c.Server.MaxDecks > MaxDecks {
		errs = append(errs, fmt.Errorf("server.max_decks must be in [1, %d], got %d", MaxDecks, c.Server.MaxDecks))
	}
	if p := c.Table.Penetration; p <= 0 || p >= 1 {
		errs = append(errs, fmt.Errorf("table.penetration must be in (0, 1), got %v", p))
	}
	if c.Table.BlackjackPayout <= 0 {
		errs = append(errs, fmt.Errorf("table.blackjack_payout must be positive, got %v", c.Table.BlackjackPayout))
	}
	if _, err := counter.ParseSystem(c.Table.CountingSystem); err != nil {
		errs = append(errs, fmt.Errorf("table.counting_system %q unknown", c.Table.CountingSystem))
	}
	if c.Betting.Amount < 0 {
		errs = append(errs, fmt.Errorf("betting.amount must not be negative, got %v", c.Betting.Amount))
	}
	if c.SideBets.PerfectPairs < 0 || c.SideBets.TwentyOnePlusThree < 0 {
		errs = append(errs, errors.New("side_bets stakes must not be negative"))
	}
	if c.Simulation.Shoes <= 0 {
		errs = append(errs, fmt.Errorf("simulation.shoes must be positive, got %d", c.Simulation.Shoes))
	}
	if c.Simulation.Workers < 0 {
		errs = append(errs, fmt.Errorf("simulation.workers must not be negative, got %d", c.Simulation.Workers))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Addr 返回服务器监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadEnvFile reads KEY=VALUE pairs from a .env file without touching the
// process environment. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return env, nil
}

// EnvLookup resolves keys from file first, then from the process environment.
func EnvLookup(file map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		if v, ok := file[key]; ok {
			return v, true
		}
		return os.LookupEnv(key)
	}
}

// ApplyEnv overrides fields from BJSIM_* variables, e.g. BJSIM_REDIS_ADDR.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	e := envReader{lookup: lookup}

	e.stringVar("SERVER_HOST", &c.Server.Host)
	e.intVar("SERVER_PORT", &c.Server.Port)
	e.boolVar("REDIS_ENABLED", &c.Redis.Enabled)
	e.stringVar("REDIS_ADDR", &c.Redis.Addr)
	e.stringVar("REDIS_PASSWORD", &c.Redis.Password)
	e.intVar("REDIS_DB", &c.Redis.DB)
	e.intVar("DECKS", &c.Table.Decks)
	e.float64Var("PENETRATION", &c.Table.Penetration)
	e.stringVar("COUNTING_SYSTEM", &c.Table.CountingSystem)
	e.stringVar("STRATEGY_FILE", &c.Table.StrategyFile)
	e.float64Var("BET_AMOUNT", &c.Betting.Amount)
	e.intVar("SHOES", &c.Simulation.Shoes)
	e.intVar("WORKERS", &c.Simulation.Workers)
	e.uint64Var("SEED", &c.Simulation.Seed)

	if len(e.errs) > 0 {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, errors.Join(e.errs...))
	}
	return nil
}

// envReader collects parse errors while applying overrides. Empty values
// are ignored.
type envReader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(envPrefix + key)
	return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
}

func (e *envReader) stringVar(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) intVar(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) uint64Var(key string, dst *uint64) {
	if v, ok := e.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float64Var(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) boolVar(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = b
	}
}

// Engine builds the strategy engine from the configured tables.
func (c *Config) Engine() (*strategy.Engine, error) {
	if strings.TrimSpace(c.Table.StrategyFile) == "" {
		return strategy.NewEngine(nil), nil
	}
	tables, err := strategy.LoadTablesFile(c.Table.StrategyFile)
	if err != nil {
		return nil, err
	}
	return strategy.NewEngine(tables), nil
}

// Session 返回单靴配置
func (c *Config) Session() (session.Config, error) {
	system, err := counter.ParseSystem(c.Table.CountingSystem)
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Decks:       c.Table.Decks,
		Penetration: c.Table.Penetration,
		System:      system,
		Rules: round.Rules{
			BlackjackPayout: c.Table.BlackjackPayout,
			HitSplitAces:    c.Table.HitSplitAces,
			SideBets: sidebet.Stakes{
				PerfectPairs:       c.SideBets.PerfectPairs,
				TwentyOnePlusThree: c.SideBets.TwentyOnePlusThree,
			},
		},
		Bet: session.BetPolicy{
			Amount:            c.Betting.Amount,
			OnlyWhenFavorable: c.Betting.OnlyWhenFavorable,
			Threshold:         c.Betting.FavorableThreshold,
		},
	}, nil
}

// SimOptions 返回模拟器参数
func (c *Config) SimOptions() (sim.Options, error) {
	sc, err := c.Session()
	if err != nil {
		return sim.Options{}, err
	}
	return sim.Options{
		Session:          sc,
		Shoes:            c.Simulation.Shoes,
		Workers:          c.Simulation.Workers,
		Seed:             c.Simulation.Seed,
		StartingBankroll: c.Simulation.StartingBankroll,
	}, nil
}
