// Package config loads the questkeeper application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lawnchairsociety/questkeeper/internal/catalogdb"
	"github.com/lawnchairsociety/questkeeper/internal/logger"
	"github.com/lawnchairsociety/questkeeper/internal/tracker"
	"gopkg.in/yaml.v3"
)

// Catalog sources
const (
	CatalogSourceYAML = "yaml"
	CatalogSourceDB   = "db"
)

// Config holds application-wide configuration settings.
type Config struct {
	Catalog     CatalogConfig     `yaml:"catalog"`
	Database    catalogdb.Config  `yaml:"database"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	Rewards     RewardsConfig     `yaml:"rewards"`
	Logging     logger.Config     `yaml:"logging"`
}

// CatalogConfig selects where quest definitions come from.
type CatalogConfig struct {
	// Source is "yaml" (read Path) or "db" (read the catalog database).
	Source string `yaml:"source"`

	// Path is a quests YAML file or a directory of them. With source "db"
	// it is still used by -import.
	Path string `yaml:"path"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// Address is the listen address of the HUD server.
	Address string `yaml:"address"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// ConnectionsConfig holds HUD connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited.
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// RewardsConfig controls the completion popup.
type RewardsConfig struct {
	// MessageTemplate is a fmt template with at most one %s, replaced by the
	// quest title. %% writes a literal percent sign.
	MessageTemplate string `yaml:"message_template"`

	// DisplaySeconds is how long a popup stays visible.
	DisplaySeconds int `yaml:"display_seconds"`
}

// DisplayDuration returns DisplaySeconds as a time.Duration
func (r RewardsConfig) DisplayDuration() time.Duration {
	return time.Duration(r.DisplaySeconds) * time.Second
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Source: CatalogSourceYAML,
			Path:   "data/quests.yaml",
		},
		Database: catalogdb.DefaultConfig("data/questkeeper.db"),
		WebSocket: WebSocketConfig{
			Address:        ":4443",
			AllowedOrigins: []string{}, // Same-origin only by default
			MaxMessageSize: 4096,
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 3,
			MaxTotal: 100,
		},
		Rewards: RewardsConfig{
			MessageTemplate: tracker.DefaultRewardTemplate,
			DisplaySeconds:  2,
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	config.Logging = config.Logging.Normalize()
	return config, nil
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. Variables already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides on top of the file config.
func (c *Config) ApplyEnv() {
	if source := os.Getenv("QUESTKEEPER_CATALOG_SOURCE"); source != "" {
		c.Catalog.Source = strings.ToLower(source)
	}

	if path := os.Getenv("QUESTKEEPER_CATALOG_PATH"); path != "" {
		c.Catalog.Path = path
	}

	if driver := os.Getenv("QUESTKEEPER_DB_DRIVER"); driver != "" {
		c.Database.Driver = strings.ToLower(driver)
	}

	if dbPath := os.Getenv("QUESTKEEPER_DB_PATH"); dbPath != "" {
		c.Database.SQLitePath = dbPath
	}

	if addr := os.Getenv("QUESTKEEPER_WS_ADDRESS"); addr != "" {
		c.WebSocket.Address = addr
	}

	c.Logging = c.Logging.ApplyEnv()
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case CatalogSourceYAML:
		if c.Catalog.Path == "" {
			return errors.New("catalog.path is required when catalog.source is yaml")
		}
	case CatalogSourceDB:
	default:
		return fmt.Errorf("unknown catalog.source %q (want yaml or db)", c.Catalog.Source)
	}

	if _, err := catalogdb.DialectFor(c.Database.Driver); err != nil {
		return fmt.Errorf("database.driver: %w (want sqlite or postgres)", err)
	}

	if c.WebSocket.Address == "" {
		return errors.New("websocket.address is required")
	}

	if err := tracker.ValidateRewardTemplate(c.Rewards.MessageTemplate); err != nil {
		return fmt.Errorf("rewards.message_template: %w", err)
	}
	return nil
}

// IsOriginAllowed reports whether a HUD page served from origin may open a
// socket on requestHost. With no allowed_origins only same-origin pages and
// clients that send no Origin (game engines, tools) get in; "*" admits all.
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	return slices.Contains(c.AllowedOrigins, "*") || slices.Contains(c.AllowedOrigins, origin)
}

func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, requestHost)
}
