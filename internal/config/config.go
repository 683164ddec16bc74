// Package config loads fdemon's own layered settings — UI preferences,
// default device, minimal-mode default. It never parses the project's
// launch configuration (.fdemon/launch.toml or .vscode/launch.json): those
// arrive pre-parsed as engine.LoadedConfigs/engine.Settings snapshots
// installed into AppState at startup.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the merged view of global, repo, and local settings.
type Config struct {
	RepoPath string        `json:"repo_path"`
	Global   *GlobalConfig `json:"global,omitempty"`
	Repo     *RepoConfig   `json:"repo,omitempty"`
	Local    *RepoConfig   `json:"local,omitempty"`
}

// GlobalConfig stores machine-wide preferences under
// ~/.config/fdemon/config.json.
type GlobalConfig struct {
	DefaultDevice string `json:"default_device"`
	Theme         string `json:"theme"`
	MinimalMode   *bool  `json:"minimal_mode,omitempty"`
}

// RepoConfig stores per-project settings under .fdemon/settings.json (or
// settings.local.json for uncommitted overrides).
type RepoConfig struct {
	DefaultDevice string `json:"default_device"`
	AutoRestore   *bool  `json:"auto_restore,omitempty"`
	MinimalMode   *bool  `json:"minimal_mode,omitempty"`
}

// Load reads global, repo, and local settings layers for repoPath. Missing
// files are not an error: a missing repo or local file leaves that layer
// nil so callers fall through the priority chain, and a missing global
// file yields a GlobalConfig with only Theme set to "default".
func Load(repoPath string) (*Config, error) {
	cfg := &Config{RepoPath: repoPath}

	if globalCfg, err := loadGlobalConfig(); err == nil {
		cfg.Global = globalCfg
	}
	if repoCfg, err := loadRepoConfig(repoPath, "settings.json"); err == nil {
		cfg.Repo = repoCfg
	}
	if localCfg, err := loadRepoConfig(repoPath, "settings.local.json"); err == nil {
		cfg.Local = localCfg
	}

	return cfg, nil
}

// GetDefaultDevice resolves the preferred launch device: Local > Repo >
// Global > none.
func (c *Config) GetDefaultDevice() string {
	if c.Local != nil && c.Local.DefaultDevice != "" {
		return c.Local.DefaultDevice
	}
	if c.Repo != nil && c.Repo.DefaultDevice != "" {
		return c.Repo.DefaultDevice
	}
	if c.Global != nil && c.Global.DefaultDevice != "" {
		return c.Global.DefaultDevice
	}
	return ""
}

// GetAutoRestore reports whether sessions from the prior run should be
// restored on startup.
func (c *Config) GetAutoRestore() bool {
	if c.Local != nil && c.Local.AutoRestore != nil {
		return *c.Local.AutoRestore
	}
	if c.Repo != nil && c.Repo.AutoRestore != nil {
		return *c.Repo.AutoRestore
	}
	return true
}

// GetMinimalMode resolves the default minimal-UI-mode setting.
func (c *Config) GetMinimalMode() bool {
	if c.Local != nil && c.Local.MinimalMode != nil {
		return *c.Local.MinimalMode
	}
	if c.Repo != nil && c.Repo.MinimalMode != nil {
		return *c.Repo.MinimalMode
	}
	if c.Global != nil && c.Global.MinimalMode != nil {
		return *c.Global.MinimalMode
	}
	return false
}

func loadGlobalConfig() (*GlobalConfig, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, "fdemon", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{Theme: "default"}, nil
		}
		return nil, err
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse global config: %w", err)
	}
	return &cfg, nil
}

func loadRepoConfig(repoPath, filename string) (*RepoConfig, error) {
	configPath := filepath.Join(repoPath, ".fdemon", filename)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var cfg RepoConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return &cfg, nil
}
