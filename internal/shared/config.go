package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvLogLevel overrides [LoggingConfig.Level] when set.
const EnvLogLevel = "TUNEHOST_LOG_LEVEL"

// Config represents the host configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Player   PlayerConfig   `toml:"player"`
	Plugins  PluginsConfig  `toml:"plugins"`
}

// DatabaseConfig contains the library database connection settings.
type DatabaseConfig struct {
	URL            string        `toml:"url"`
	MaxOpenConns   int           `toml:"max_open_conns"`
	MaxIdleConns   int           `toml:"max_idle_conns"`
	ConnectTimeout time.Duration `toml:"connect_timeout"` // TOML duration string, e.g. "5s"
}

// LoggingConfig controls the minimum level forwarded through the log bridge.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// PlayerConfig contains player defaults.
type PlayerConfig struct {
	Volume       int     `toml:"volume"`
	PositionRate float64 `toml:"position_rate"` // position notifications per second
}

// PluginsConfig lists the plugins loaded at startup, in load order.
type PluginsConfig struct {
	Enabled []string `toml:"enabled"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Fields missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate reports configuration values the host cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("%w: database.url is required", ErrInvalidConfig)
	}
	if c.Database.ConnectTimeout < 0 {
		return fmt.Errorf("%w: database.connect_timeout must not be negative", ErrInvalidConfig)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 100 {
		return fmt.Errorf("%w: player.volume must be within 0-100, got %d", ErrInvalidConfig, c.Player.Volume)
	}
	if c.Player.PositionRate < 0 {
		return fmt.Errorf("%w: player.position_rate must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LogLevel returns the configured log level, honoring [EnvLogLevel].
func (c *Config) LogLevel() string {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		return v
	}
	return c.Logging.Level
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
