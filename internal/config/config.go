// Package config loads the server configuration from file and environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Engine   EngineConfig   `mapstructure:"engine"`
}

// ServerConfig holds the transport settings.
type ServerConfig struct {
	WebSocket       WebSocketConfig `mapstructure:"websocket"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

// WebSocketConfig configures the websocket listener.
type WebSocketConfig struct {
	Address         string   `mapstructure:"address"`
	ReadBufferSize  int      `mapstructure:"read_buffer_size"`
	WriteBufferSize int      `mapstructure:"write_buffer_size"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig configures the pgx connection pool. An empty URL disables
// result persistence.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds match defaults and the card data location.
type EngineConfig struct {
	CardDataPath   string        `mapstructure:"card_data_path"`
	ActionsPerTurn int           `mapstructure:"actions_per_turn"`
	StartingHand   int           `mapstructure:"starting_hand"`
	MaxHandSize    int           `mapstructure:"max_hand_size"`
	StartingEnergy int           `mapstructure:"starting_energy"`
	TurnTimeLimit  time.Duration `mapstructure:"turn_time_limit"`
}

// Load reads the configuration file and applies TROPHIC_* environment
// overrides. A missing file is an error only when a path was given
// explicitly; defaults alone are a valid configuration.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TROPHIC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8089")
	v.SetDefault("server.websocket.read_buffer_size", 4096)
	v.SetDefault("server.websocket.write_buffer_size", 4096)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.card_data_path", "data/cards.json")
	v.SetDefault("engine.actions_per_turn", 3)
	v.SetDefault("engine.starting_hand", 5)
	v.SetDefault("engine.max_hand_size", 8)
	v.SetDefault("engine.starting_energy", 2)
	v.SetDefault("engine.turn_time_limit", 0)
}

func validate(cfg *Config) error {
	if cfg.Server.WebSocket.Address == "" {
		return fmt.Errorf("server.websocket.address must not be empty")
	}
	if cfg.Engine.ActionsPerTurn <= 0 {
		return fmt.Errorf("engine.actions_per_turn must be positive")
	}
	if cfg.Engine.StartingHand > cfg.Engine.MaxHandSize {
		return fmt.Errorf("engine.starting_hand must not exceed engine.max_hand_size")
	}
	return nil
}
