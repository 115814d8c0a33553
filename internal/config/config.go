package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/textkernel/tx-go/pkg/client"
	"github.com/textkernel/tx-go/pkg/database"
	"github.com/textkernel/tx-go/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvTxEnv     = "TX_ENV"
	EnvTxVersion = "TX_VERSION"
)

var clientEnv = &client.Env{
	BaseURL:           "TX_CLIENT_BASE_URL",
	AccountID:         "TX_CLIENT_ACCOUNT_ID",
	ServiceKey:        "TX_CLIENT_SERVICE_KEY",
	Timeout:           "TX_CLIENT_TIMEOUT",
	RequestsPerSecond: "TX_CLIENT_REQUESTS_PER_SECOND",
}

var databaseEnv = &database.Env{
	Enabled:         "TX_DB_ENABLED",
	Host:            "TX_DB_HOST",
	Port:            "TX_DB_PORT",
	Name:            "TX_DB_NAME",
	User:            "TX_DB_USER",
	Password:        "TX_DB_PASSWORD",
	SSLMode:         "TX_DB_SSL_MODE",
	MaxOpenConns:    "TX_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "TX_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "TX_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "TX_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Enabled:          "TX_STORAGE_ENABLED",
	ContainerName:    "TX_STORAGE_CONTAINER_NAME",
	ConnectionString: "TX_STORAGE_CONNECTION_STRING",
	AccountURL:       "TX_STORAGE_ACCOUNT_URL",
	Prefix:           "TX_STORAGE_PREFIX",
}

// DatabaseEnv returns the environment variable names for database settings.
func DatabaseEnv() *database.Env {
	env := *databaseEnv
	return &env
}

// Config is the root configuration for the batch runner.
type Config struct {
	Client   client.Config   `toml:"client"`
	Batch    BatchConfig     `toml:"batch"`
	Database database.Config `toml:"database"`
	Storage  storage.Config  `toml:"storage"`
	Metrics  MetricsConfig   `toml:"metrics"`
	Logging  LoggingConfig   `toml:"logging"`
	Version  string          `toml:"version"`
}

// Env returns the TX_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvTxEnv); env != "" {
		return env
	}
	return "local"
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with config files resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Client.Merge(&overlay.Client)
	c.Batch.Merge(&overlay.Batch)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Metrics.Merge(&overlay.Metrics)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.Client.Finalize(clientEnv); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if err := c.Batch.Finalize(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Metrics.Finalize(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvTxVersion); v != "" {
		c.Version = v
	}
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvTxEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
