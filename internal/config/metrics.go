package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvMetricsEnabled  = "TX_METRICS_ENABLED"
	EnvMetricsListen   = "TX_METRICS_LISTEN"
	EnvMetricsTextfile = "TX_METRICS_TEXTFILE"
)

// MetricsConfig controls Prometheus export. Listen serves /metrics while a
// batch runs; Textfile is written once when it ends.
type MetricsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Listen   string `toml:"listen"`
	Textfile string `toml:"textfile"`
}

// Finalize applies environment variable overrides and validation.
func (c *MetricsConfig) Finalize() error {
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MetricsConfig) Merge(overlay *MetricsConfig) {
	if overlay.Enabled {
		c.Enabled = true
	}
	if overlay.Listen != "" {
		c.Listen = overlay.Listen
	}
	if overlay.Textfile != "" {
		c.Textfile = overlay.Textfile
	}
}

func (c *MetricsConfig) loadEnv() {
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := os.Getenv(EnvMetricsListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvMetricsTextfile); v != "" {
		c.Textfile = v
	}
}

func (c *MetricsConfig) validate() error {
	if c.Enabled && c.Listen == "" && c.Textfile == "" {
		return fmt.Errorf("listen or textfile required when enabled")
	}
	return nil
}
