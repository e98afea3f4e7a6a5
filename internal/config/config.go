// ABOUTME: Configuration loading and parsing for voiceos-admin
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete voiceos-admin configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Remote    RemoteConfig    `yaml:"remote"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Save      SaveConfig      `yaml:"save"`
	Cache     CacheConfig     `yaml:"cache"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (implies HTTPS)
}

// RemoteConfig holds the remote configuration service connection settings
type RemoteConfig struct {
	BaseURL  string        `yaml:"base_url"`
	APIToken string        `yaml:"api_token"`
	Timeout  time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// DatabaseConfig holds save-history database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds gateway authentication configuration
type AuthConfig struct {
	JWTSecret    string   `yaml:"jwt_secret"`
	APIKeyHashes []string `yaml:"api_key_hashes"`
}

// SaveConfig controls how the reconciler dispatches a save
type SaveConfig struct {
	// Policy is "sequential" (default) or "bounded"
	Policy string `yaml:"policy"`
	// Parallelism bounds concurrent per-record operations when Policy is "bounded"
	Parallelism int `yaml:"parallelism"`
	// KeepUnsavedDrafts re-queues records whose create failed so the next
	// save retries them instead of requiring re-entry
	KeepUnsavedDrafts bool `yaml:"keep_unsaved_drafts"`
}

// CacheConfig holds agent-config read cache settings
type CacheConfig struct {
	TTL        time.Duration `yaml:"-"`
	MaxEntries int           `yaml:"max_entries"`

	TTLRaw string `yaml:"ttl"`
}

// HistoryConfig holds save-history retention settings
type HistoryConfig struct {
	Retention time.Duration `yaml:"-"`
	// SweepSchedule is a cron expression for the retention sweep
	SweepSchedule string `yaml:"sweep_schedule"`

	RetentionRaw string `yaml:"retention"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in defaults for optional sections.
func (c *Config) applyDefaults() {
	if c.Save.Policy == "" {
		c.Save.Policy = "sequential"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 30 * time.Second
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 1024
	}
	if c.History.Retention == 0 {
		c.History.Retention = 90 * 24 * time.Hour
	}
	if c.History.SweepSchedule == "" {
		c.History.SweepSchedule = "0 3 * * *"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// The HTTP address is required unless Tailscale is serving
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Save.Policy {
	case "sequential":
	case "bounded":
		if c.Save.Parallelism < 1 {
			return fmt.Errorf("save.parallelism must be at least 1 when save.policy is bounded")
		}
	default:
		return fmt.Errorf("save.policy must be %q or %q, got %q", "sequential", "bounded", c.Save.Policy)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Remote.TimeoutRaw != "" {
		cfg.Remote.Timeout, err = time.ParseDuration(cfg.Remote.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing remote.timeout %q: %w", cfg.Remote.TimeoutRaw, err)
		}
	}

	if cfg.Cache.TTLRaw != "" {
		cfg.Cache.TTL, err = time.ParseDuration(cfg.Cache.TTLRaw)
		if err != nil {
			return fmt.Errorf("parsing cache.ttl %q: %w", cfg.Cache.TTLRaw, err)
		}
	}

	if cfg.History.RetentionRaw != "" {
		cfg.History.Retention, err = time.ParseDuration(cfg.History.RetentionRaw)
		if err != nil {
			return fmt.Errorf("parsing history.retention %q: %w", cfg.History.RetentionRaw, err)
		}
	}

	return nil
}
