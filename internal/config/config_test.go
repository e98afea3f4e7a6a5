// ABOUTME: Tests for configuration loading, env expansion, and validation
// ABOUTME: Exercises YAML parsing, duration fields, defaults, and error cases

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "admin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalConfig = `
server:
  http_addr: ":8080"
remote:
  base_url: "https://api.example.com"
database:
  path: "/tmp/admin.db"
`

func TestLoadMinimalConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "https://api.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "/tmp/admin.db", cfg.Database.Path)

	// Defaults
	assert.Equal(t, "sequential", cfg.Save.Policy)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, 90*24*time.Hour, cfg.History.Retention)
	assert.Equal(t, "0 3 * * *", cfg.History.SweepSchedule)
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":9090"
tailscale:
  enabled: false
remote:
  base_url: "https://api.example.com"
  api_token: "tok"
  timeout: "45s"
database:
  path: "/var/lib/voiceos/admin.db"
auth:
  jwt_secret: "s3cret"
  api_key_hashes:
    - "$2a$10$abcdefghijklmnopqrstuv"
save:
  policy: "bounded"
  parallelism: 4
  keep_unsaved_drafts: true
cache:
  ttl: "2m"
  max_entries: 64
history:
  retention: "720h"
  sweep_schedule: "30 2 * * *"
logging:
  level: "debug"
  format: "json"
`))
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "bounded", cfg.Save.Policy)
	assert.Equal(t, 4, cfg.Save.Parallelism)
	assert.True(t, cfg.Save.KeepUnsavedDrafts)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, 720*time.Hour, cfg.History.Retention)
	assert.Equal(t, "30 2 * * *", cfg.History.SweepSchedule)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Len(t, cfg.Auth.APIKeyHashes, 1)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_REMOTE_TOKEN", "expanded-token")

	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
remote:
  base_url: "https://api.example.com"
  api_token: "${TEST_REMOTE_TOKEN}"
database:
  path: "/tmp/admin.db"
`))
	require.NoError(t, err)
	assert.Equal(t, "expanded-token", cfg.Remote.APIToken)
}

func TestUnsetEnvVarExpandsEmpty(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
remote:
  base_url: "https://api.example.com"
  api_token: "${DEFINITELY_NOT_SET_ANYWHERE}"
database:
  path: "/tmp/admin.db"
`))
	require.NoError(t, err)
	assert.Empty(t, cfg.Remote.APIToken)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [not: valid"))
	assert.Error(t, err)
}

func TestInvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, `
server:
  http_addr: ":8080"
remote:
  base_url: "https://api.example.com"
  timeout: "not-a-duration"
database:
  path: "/tmp/admin.db"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote.timeout")
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing http addr without tailscale",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "" },
			wantErr: "server.http_addr",
		},
		{
			name: "tailscale without hostname",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale.Enabled = true
			},
			wantErr: "tailscale.hostname",
		},
		{
			name:    "missing remote base url",
			mutate:  func(c *Config) { c.Remote.BaseURL = "" },
			wantErr: "remote.base_url",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "unknown save policy",
			mutate:  func(c *Config) { c.Save.Policy = "eager" },
			wantErr: "save.policy",
		},
		{
			name: "bounded without parallelism",
			mutate: func(c *Config) {
				c.Save.Policy = "bounded"
				c.Save.Parallelism = 0
			},
			wantErr: "save.parallelism",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{HTTPAddr: ":8080"},
				Remote:   RemoteConfig{BaseURL: "https://api.example.com"},
				Database: DatabaseConfig{Path: "/tmp/admin.db"},
				Save:     SaveConfig{Policy: "sequential"},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTailscaleServesWithoutHTTPAddr(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
tailscale:
  enabled: true
  hostname: "voiceos-admin"
remote:
  base_url: "https://api.example.com"
database:
  path: "/tmp/admin.db"
`))
	require.NoError(t, err)
	assert.True(t, cfg.Tailscale.Enabled)
	assert.Empty(t, cfg.Server.HTTPAddr)
}
