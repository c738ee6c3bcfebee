// Package config provides repository configuration management,
// including reading and writing forksync configuration files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the config file stored inside the .git directory so it
// never shows up as a workspace change.
const ConfigFileName = ".forksync_config"

// Config represents the repository configuration
type Config struct {
	UpstreamRemote    string `json:"upstreamRemote,omitempty"`
	UpstreamBranch    string `json:"upstreamBranch,omitempty"`
	OriginRemote      string `json:"originRemote,omitempty"`
	MirrorBranch      string `json:"mirrorBranch,omitempty"`
	IntegrationBranch string `json:"integrationBranch,omitempty"`
	ProductionBranch  string `json:"productionBranch,omitempty"`

	// TestCommand is the verification command run by the test gate.
	// Empty means no verification command is discoverable (gate reports skipped).
	TestCommand string `json:"testCommand,omitempty"`

	// Post-promotion collaborator commands. All opaque; run through the
	// shell runner.
	BuildCommand        string `json:"buildCommand,omitempty"`
	BuildMarker         string `json:"buildMarker,omitempty"`
	ServiceCheckCommand string `json:"serviceCheckCommand,omitempty"`
	RestartCommand      string `json:"restartCommand,omitempty"`
	HealthCommand       string `json:"healthCommand,omitempty"`
	HealthAttempts      int    `json:"healthAttempts,omitempty"`
	HealthIntervalSecs  int    `json:"healthIntervalSeconds,omitempty"`
	NotifyCommand       string `json:"notifyCommand,omitempty"`
}

// Defaults for the branch roles and remotes.
const (
	DefaultUpstreamRemote    = "upstream"
	DefaultUpstreamBranch    = "main"
	DefaultOriginRemote      = "origin"
	DefaultMirrorBranch      = "upstream-mirror"
	DefaultIntegrationBranch = "integration"
	DefaultProductionBranch  = "production"
	DefaultHealthAttempts    = 10
	DefaultHealthInterval    = 3
)

// Load reads the repository configuration from gitDir, applying defaults for
// any unset field. A missing file yields the default configuration.
func Load(gitDir string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(filepath.Join(gitDir, ConfigFileName))
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse forksync config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read forksync config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to gitDir.
func Save(gitDir string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(gitDir, ConfigFileName), data, 0600)
}

func (c *Config) applyDefaults() {
	if c.UpstreamRemote == "" {
		c.UpstreamRemote = DefaultUpstreamRemote
	}
	if c.UpstreamBranch == "" {
		c.UpstreamBranch = DefaultUpstreamBranch
	}
	if c.OriginRemote == "" {
		c.OriginRemote = DefaultOriginRemote
	}
	if c.MirrorBranch == "" {
		c.MirrorBranch = DefaultMirrorBranch
	}
	if c.IntegrationBranch == "" {
		c.IntegrationBranch = DefaultIntegrationBranch
	}
	if c.ProductionBranch == "" {
		c.ProductionBranch = DefaultProductionBranch
	}
	if c.HealthAttempts <= 0 {
		c.HealthAttempts = DefaultHealthAttempts
	}
	if c.HealthIntervalSecs <= 0 {
		c.HealthIntervalSecs = DefaultHealthInterval
	}
}

// UpstreamRef returns the remote-tracking ref for the upstream branch,
// e.g. "upstream/main".
func (c *Config) UpstreamRef() string {
	return c.UpstreamRemote + "/" + c.UpstreamBranch
}

// Profile returns the automation profile identifier from the environment,
// or "default" when unset.
func Profile() string {
	if p := os.Getenv("FORKSYNC_PROFILE"); p != "" {
		return p
	}
	return "default"
}

// NotifyTarget returns the notification recipient from the environment.
func NotifyTarget() string {
	return os.Getenv("FORKSYNC_NOTIFY_TARGET")
}

// NotifyChannel returns the notification channel from the environment.
func NotifyChannel() string {
	return os.Getenv("FORKSYNC_NOTIFY_CHANNEL")
}
