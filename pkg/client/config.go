package client

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds connection parameters for the parsing service.
type Config struct {
	BaseURL           string  `toml:"base_url"`
	AccountID         string  `toml:"account_id"`
	ServiceKey        string  `toml:"service_key"`
	Timeout           string  `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL           string
	AccountID         string
	ServiceKey        string
	Timeout           string
	RequestsPerSecond string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.AccountID != "" {
		c.AccountID = overlay.AccountID
	}
	if overlay.ServiceKey != "" {
		c.ServiceKey = overlay.ServiceKey
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
}

func (c *Config) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.us.textkernel.com/tx/v10"
	}
	if c.Timeout == "" {
		c.Timeout = "120s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
		}
	}
	if env.AccountID != "" {
		if v := os.Getenv(env.AccountID); v != "" {
			c.AccountID = v
		}
	}
	if env.ServiceKey != "" {
		if v := os.Getenv(env.ServiceKey); v != "" {
			c.ServiceKey = v
		}
	}
	if env.Timeout != "" {
		if v := os.Getenv(env.Timeout); v != "" {
			c.Timeout = v
		}
	}
	if env.RequestsPerSecond != "" {
		if v := os.Getenv(env.RequestsPerSecond); v != "" {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				c.RequestsPerSecond = n
			}
		}
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.AccountID == "" {
		return fmt.Errorf("account_id required")
	}
	if c.ServiceKey == "" {
		return fmt.Errorf("service_key required")
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout %q", c.Timeout)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second must not be negative")
	}
	return nil
}
