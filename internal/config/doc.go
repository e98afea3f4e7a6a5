// Package config loads the voiceos-admin YAML configuration.
//
// Configuration sections cover the HTTP (or Tailscale) listener, the remote
// configuration service connection, the save-history database, gateway
// authentication, save dispatch policy, the agent-config read cache, history
// retention, and logging. Environment variables referenced as ${VAR} are
// expanded before parsing, and duration fields accept Go duration strings
// ("30s", "72h").
package config
