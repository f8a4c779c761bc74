package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Rules    RulesConfig    `mapstructure:"rules"`
}

// ServerConfig holds the network listeners.
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// WebSocketConfig configures the action relay endpoint.
type WebSocketConfig struct {
	Address         string   `mapstructure:"address"`
	Path            string   `mapstructure:"path"`
	ReadBufferSize  int      `mapstructure:"read_buffer_size"`
	WriteBufferSize int      `mapstructure:"write_buffer_size"`
	MaxMessageSize  int64    `mapstructure:"max_message_size"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects where game states are kept. Driver "memory"
// keeps them in process; "postgres" uses URL.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig points at static data and replay storage.
type GameConfig struct {
	DataPath      string `mapstructure:"data_path"`
	ReplayDir     string `mapstructure:"replay_dir"`
	RecordReplays bool   `mapstructure:"record_replays"`
}

// RulesConfig overrides the default game settings. Zero grid sizes mean
// "size by player count".
type RulesConfig struct {
	GridWidth                int           `mapstructure:"grid_width"`
	GridHeight               int           `mapstructure:"grid_height"`
	StartingHandSize         int           `mapstructure:"starting_hand_size"`
	MaxHandSize              int           `mapstructure:"max_hand_size"`
	StartingEnergy           int           `mapstructure:"starting_energy"`
	EnergyPerTurn            int           `mapstructure:"energy_per_turn"`
	ActionsPerTurn           int           `mapstructure:"actions_per_turn"`
	TurnTimeLimit            time.Duration `mapstructure:"turn_time_limit"`
	MaxPlayers               int           `mapstructure:"max_players"`
	DiscardExcessDraws       bool          `mapstructure:"discard_excess_draws"`
	ChemoautotrophHomeBypass bool          `mapstructure:"chemoautotroph_home_bypass"`
	OpportunistBypass        bool          `mapstructure:"opportunist_bypass"`
}

// Settings builds the game settings for a table of playerCount players.
func (r RulesConfig) Settings(playerCount int) state.Settings {
	s := state.DefaultSettings(playerCount)
	if r.GridWidth > 0 && r.GridHeight > 0 {
		s.GridWidth, s.GridHeight = r.GridWidth, r.GridHeight
	}
	s.StartingHandSize = r.StartingHandSize
	s.MaxHandSize = r.MaxHandSize
	s.StartingEnergy = r.StartingEnergy
	s.EnergyPerTurn = r.EnergyPerTurn
	s.ActionsPerTurn = r.ActionsPerTurn
	s.TurnTimeLimit = r.TurnTimeLimit
	s.MaxPlayers = r.MaxPlayers
	s.DiscardExcessDraws = r.DiscardExcessDraws
	s.ChemoautotrophHomeBypass = r.ChemoautotrophHomeBypass
	s.OpportunistBypass = r.OpportunistBypass
	return s
}

// Load reads configuration from path, if given, then from BIOMASTERS_*
// environment variables. Every key has a default.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BIOMASTERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := state.DefaultSettings(2)

	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.websocket.max_message_size", 64*1024)
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.data_path", "data/cards.yaml")
	v.SetDefault("game.replay_dir", "replays")
	v.SetDefault("game.record_replays", false)

	v.SetDefault("rules.grid_width", 0)
	v.SetDefault("rules.grid_height", 0)
	v.SetDefault("rules.starting_hand_size", defaults.StartingHandSize)
	v.SetDefault("rules.max_hand_size", defaults.MaxHandSize)
	v.SetDefault("rules.starting_energy", defaults.StartingEnergy)
	v.SetDefault("rules.energy_per_turn", defaults.EnergyPerTurn)
	v.SetDefault("rules.actions_per_turn", defaults.ActionsPerTurn)
	v.SetDefault("rules.turn_time_limit", defaults.TurnTimeLimit)
	v.SetDefault("rules.max_players", defaults.MaxPlayers)
	v.SetDefault("rules.discard_excess_draws", defaults.DiscardExcessDraws)
	v.SetDefault("rules.chemoautotroph_home_bypass", defaults.ChemoautotrophHomeBypass)
	v.SetDefault("rules.opportunist_bypass", defaults.OpportunistBypass)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Game.DataPath == "" {
		return fmt.Errorf("game.data_path is required")
	}
	if c.Rules.ActionsPerTurn <= 0 {
		return fmt.Errorf("rules.actions_per_turn must be positive")
	}
	if c.Rules.MaxPlayers < 2 || c.Rules.MaxPlayers > state.MaxSeats {
		return fmt.Errorf("rules.max_players must be between 2 and %d", state.MaxSeats)
	}
	if c.Rules.StartingHandSize < 0 || c.Rules.MaxHandSize < 0 {
		return fmt.Errorf("hand sizes cannot be negative")
	}
	if c.Rules.MaxHandSize > 0 && c.Rules.StartingHandSize > c.Rules.MaxHandSize {
		return fmt.Errorf("rules.starting_hand_size %d exceeds rules.max_hand_size %d", c.Rules.StartingHandSize, c.Rules.MaxHandSize)
	}
	return nil
}
