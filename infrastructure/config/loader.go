package config

import (
	"fmt"
	"os"
	"time"

	"steam-publisher/domain/publish"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up when no --config flag is given
const DefaultFileName = "steam-publisher.yaml"

// DefaultToolDir is the SteamCMD directory relative to the project root
const DefaultToolDir = "Assets/Editor/Builder"

// Config represents the complete application configuration
type Config struct {
	SteamCmd     SteamCmdConfig          `yaml:"steamcmd"`
	Notification NotificationConfig      `yaml:"notification"`
	Sanitize     SanitizeConfig          `yaml:"sanitize"`
	Targets      map[string]TargetConfig `yaml:"targets"`
}

// SteamCmdConfig contains SteamCMD locations
type SteamCmdConfig struct {
	Dir        string `yaml:"dir"`
	ScratchDir string `yaml:"scratch_dir,omitempty"`
}

// NotificationConfig contains chat notification settings
type NotificationConfig struct {
	Author  string        `yaml:"author,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// SanitizeConfig contains the directory name markers removed before upload
type SanitizeConfig struct {
	Markers []string `yaml:"markers,omitempty"`
}

// TargetConfig represents one build target's Steam destination
type TargetConfig struct {
	AppID   int    `yaml:"app_id"`
	DepotID int    `yaml:"depot_id"`
	Branch  string `yaml:"branch,omitempty"`
	SetLive bool   `yaml:"set_live,omitempty"`
}

// Default returns a config populated with the built-in target table
func Default() *Config {
	cfg := &Config{
		SteamCmd: SteamCmdConfig{Dir: DefaultToolDir},
		Targets:  make(map[string]TargetConfig),
	}

	registry := publish.DefaultRegistry()
	for _, key := range registry.Keys() {
		target, _ := registry.Lookup(key)
		cfg.Targets[key] = TargetConfig{
			AppID:   target.AppID,
			DepotID: target.DepotID,
			Branch:  target.Branch,
			SetLive: target.SetLive,
		}
	}

	return cfg
}

// Registry converts the targets table into a lookup registry.
// An empty table yields the built-in registry.
func (c *Config) Registry() publish.Registry {
	if c == nil || len(c.Targets) == 0 {
		return publish.DefaultRegistry()
	}

	targets := make(map[string]publish.UploadTarget, len(c.Targets))
	for key, tc := range c.Targets {
		targets[key] = publish.UploadTarget{
			AppID:   tc.AppID,
			DepotID: tc.DepotID,
			Branch:  tc.Branch,
			SetLive: tc.SetLive,
		}
	}
	return publish.NewRegistry(targets)
}

// ToolDir returns the configured SteamCMD directory, or the default
func (c *Config) ToolDir() string {
	if c == nil || c.SteamCmd.Dir == "" {
		return DefaultToolDir
	}
	return c.SteamCmd.Dir
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
