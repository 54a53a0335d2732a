// Package config loads the server's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/StoreStation/TimberCraft/pkg/chop"
)

// Environment variables consulted when the file leaves a value unset.
const (
	EnvConfigPath  = "TIMBERCRAFT_CONFIG"
	EnvMetricsAddr = "TIMBERCRAFT_METRICS_ADDR"
)

const defaultMetricsAddr = ":2112"

// Config is the root of the configuration file.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	TreeChopper TreeChopperConfig `yaml:"treechopper"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type ServerConfig struct {
	Address              string `yaml:"address"`
	MaxPlayers           int    `yaml:"max_players"`
	MOTD                 string `yaml:"motd"`
	Seed                 int64  `yaml:"seed"`
	DefaultGameMode      string `yaml:"default_gamemode"`
	ViewDistance         int    `yaml:"view_distance"`
	CompressionThreshold int    `yaml:"compression_threshold"`
	SnapshotPath         string `yaml:"snapshot_path"`
}

// TreeChopperConfig mirrors chop.Config with the mode names spelled out.
type TreeChopperConfig struct {
	FastLeafDecay           bool   `yaml:"fast_leaf_decay"`
	TreeChopMode            string `yaml:"tree_chop_mode"`
	FullChopDurabilityUsage string `yaml:"full_chop_durability_usage"`
	SneakToDisable          bool   `yaml:"sneak_to_disable"`
	RequireLeavesToChop     bool   `yaml:"require_leaves_to_chop"`
	MaxLogs                 int    `yaml:"max_logs"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cc := chop.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Address:              ":25565",
			MaxPlayers:           20,
			MOTD:                 "A TimberCraft Server",
			DefaultGameMode:      "survival",
			ViewDistance:         6,
			CompressionThreshold: 256,
			SnapshotPath:         "world/snapshot.zst",
		},
		TreeChopper: TreeChopperConfig{
			FastLeafDecay:           cc.FastLeafDecay,
			TreeChopMode:            cc.Mode.String(),
			FullChopDurabilityUsage: cc.Durability.String(),
			SneakToDisable:          cc.SneakToDisable,
			RequireLeavesToChop:     cc.RequireLeavesToChop,
			MaxLogs:                 cc.MaxLogs,
		},
	}
}

// Load reads the YAML file at path over the defaults. With an empty path it
// falls back to $TIMBERCRAFT_CONFIG, and with neither it returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that the YAML decoder cannot.
func (c *Config) Validate() error {
	if c.Server.MaxPlayers < 1 || c.Server.MaxPlayers > 255 {
		return fmt.Errorf("server.max_players must be between 1 and 255, got %d", c.Server.MaxPlayers)
	}
	if c.Server.ViewDistance < 1 || c.Server.ViewDistance > 16 {
		return fmt.Errorf("server.view_distance must be between 1 and 16, got %d", c.Server.ViewDistance)
	}
	if c.TreeChopper.MaxLogs < 0 {
		return fmt.Errorf("treechopper.max_logs must not be negative")
	}
	_, err := c.TreeChopper.Chop()
	return err
}

// Chop converts the section into a chop.Config.
func (t TreeChopperConfig) Chop() (chop.Config, error) {
	mode, err := chop.ParseMode(t.TreeChopMode)
	if err != nil {
		return chop.Config{}, fmt.Errorf("treechopper.tree_chop_mode: %w", err)
	}
	durability, err := chop.ParseDurabilityMode(t.FullChopDurabilityUsage)
	if err != nil {
		return chop.Config{}, fmt.Errorf("treechopper.full_chop_durability_usage: %w", err)
	}
	return chop.Config{
		FastLeafDecay:       t.FastLeafDecay,
		Mode:                mode,
		Durability:          durability,
		SneakToDisable:      t.SneakToDisable,
		RequireLeavesToChop: t.RequireLeavesToChop,
		MaxLogs:             t.MaxLogs,
	}, nil
}

// MetricsAddr returns the metrics listen address: config, then
// $TIMBERCRAFT_METRICS_ADDR, then the default. It is empty when metrics
// are disabled.
func (m MetricsConfig) MetricsAddr() string {
	if !m.Enabled {
		return ""
	}
	if addr := strings.TrimSpace(m.Address); addr != "" {
		return addr
	}
	if addr := strings.TrimSpace(os.Getenv(EnvMetricsAddr)); addr != "" {
		return addr
	}
	return defaultMetricsAddr
}
