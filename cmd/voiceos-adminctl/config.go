// ABOUTME: TOML configuration for the adminctl CLI
// ABOUTME: Holds remote service and gateway connection settings

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the adminctl configuration file.
type Config struct {
	Remote  RemoteConfig  `toml:"remote"`
	Gateway GatewayConfig `toml:"gateway"`
	Save    SaveConfig    `toml:"save"`
}

// RemoteConfig points at the remote configuration service.
type RemoteConfig struct {
	BaseURL  string `toml:"base_url"`
	APIToken string `toml:"api_token"`
	Timeout  string `toml:"timeout"`
}

// GatewayConfig points at a running voiceos-admin gateway, used for the
// history command.
type GatewayConfig struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

// SaveConfig mirrors the gateway's save options for CLI-driven saves.
type SaveConfig struct {
	KeepUnsavedDrafts bool `toml:"keep_unsaved_drafts"`
}

// getConfigPath returns the path to the adminctl config file.
// Priority: VOICEOS_ADMINCTL_CONFIG env var > XDG_CONFIG_HOME/voiceos/adminctl.toml > ~/.config/voiceos/adminctl.toml
func getConfigPath() string {
	if envPath := os.Getenv("VOICEOS_ADMINCTL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "adminctl.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "voiceos", "adminctl.toml")
}

// loadConfig reads and validates the adminctl configuration.
func loadConfig() (*Config, error) {
	path := getConfigPath()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if cfg.Remote.BaseURL == "" {
		return nil, fmt.Errorf("remote.base_url is required in %s", path)
	}
	return &cfg, nil
}

// remoteTimeout parses the configured remote timeout, defaulting to 30s.
func (c *Config) remoteTimeout() (time.Duration, error) {
	if c.Remote.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Remote.Timeout)
	if err != nil {
		return 0, fmt.Errorf("parsing remote.timeout %q: %w", c.Remote.Timeout, err)
	}
	return d, nil
}
