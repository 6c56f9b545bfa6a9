// Package config provides configuration management for meshmap.
//
// Config file locations (priority order):
//  1. $MESHMAP_CONFIG
//  2. ./meshmap.yaml
//  3. ~/.config/meshmap/config.yaml
//  4. /etc/meshmap/config.yaml
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"meshmap/internal/inference"
)

// Config is the full service configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Captures  CapturesConfig  `yaml:"captures"`
	Inference InferenceConfig `yaml:"inference"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig configures snapshot and pass persistence.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// CapturesConfig configures where collector capture documents are picked up.
type CapturesConfig struct {
	Directory string `yaml:"directory"`
	Pattern   string `yaml:"pattern"`
}

// InferenceConfig carries the engine tunables. The source material treated
// these as fixed constants; they are overridable here with the documented
// defaults.
type InferenceConfig struct {
	// GPSPrecision is the decimal-degree rounding used for co-location
	// grouping (4 decimals is about 11 m).
	GPSPrecision int `yaml:"gps_precision"`
	// ColocatedSNR is assumed for a co-located pair when neither node reports
	// a reading.
	ColocatedSNR float64 `yaml:"colocated_snr"`
	// MaxParents caps inferred hop-parents per node.
	MaxParents int `yaml:"max_parents"`
}

// Load finds and loads the config file, or returns defaults if none found.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, path, nil
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":3000"},
		Database: DatabaseConfig{Path: "./meshmap.db"},
		Captures: CapturesConfig{Directory: "./data", Pattern: "network_topology_*.json"},
		Inference: InferenceConfig{
			GPSPrecision: inference.DefaultGPSPrecision,
			ColocatedSNR: inference.DefaultColocatedSNR,
			MaxParents:   inference.DefaultMaxParents,
		},
	}
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./meshmap.db"
	}
	if c.Captures.Directory == "" {
		c.Captures.Directory = "./data"
	}
	if c.Captures.Pattern == "" {
		c.Captures.Pattern = "network_topology_*.json"
	}
	if c.Inference.GPSPrecision <= 0 {
		c.Inference.GPSPrecision = inference.DefaultGPSPrecision
	}
	if c.Inference.ColocatedSNR == 0 {
		c.Inference.ColocatedSNR = inference.DefaultColocatedSNR
	}
	if c.Inference.MaxParents <= 0 {
		c.Inference.MaxParents = inference.DefaultMaxParents
	}
}

// InferenceOptions converts the config section into engine options.
func (c *Config) InferenceOptions() inference.Options {
	return inference.Options{
		GPSPrecision: c.Inference.GPSPrecision,
		ColocatedSNR: c.Inference.ColocatedSNR,
		MaxParents:   c.Inference.MaxParents,
	}
}
