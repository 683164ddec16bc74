package config

import "testing"

func boolPtr(b bool) *bool { return &b }

func TestGetDefaultDevice(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name: "local override",
			config: &Config{
				Global: &GlobalConfig{DefaultDevice: "global-device"},
				Repo:   &RepoConfig{DefaultDevice: "repo-device"},
				Local:  &RepoConfig{DefaultDevice: "local-device"},
			},
			expected: "local-device",
		},
		{
			name: "repo config",
			config: &Config{
				Global: &GlobalConfig{DefaultDevice: "global-device"},
				Repo:   &RepoConfig{DefaultDevice: "repo-device"},
			},
			expected: "repo-device",
		},
		{
			name: "global config",
			config: &Config{
				Global: &GlobalConfig{DefaultDevice: "global-device"},
			},
			expected: "global-device",
		},
		{
			name:     "no configs",
			config:   &Config{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.config.GetDefaultDevice(); result != tt.expected {
				t.Errorf("GetDefaultDevice() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetAutoRestore(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "local override true",
			config: &Config{
				Repo:  &RepoConfig{AutoRestore: boolPtr(false)},
				Local: &RepoConfig{AutoRestore: boolPtr(true)},
			},
			expected: true,
		},
		{
			name: "local override false",
			config: &Config{
				Repo:  &RepoConfig{AutoRestore: boolPtr(true)},
				Local: &RepoConfig{AutoRestore: boolPtr(false)},
			},
			expected: false,
		},
		{
			name: "repo config true",
			config: &Config{
				Repo: &RepoConfig{AutoRestore: boolPtr(true)},
			},
			expected: true,
		},
		{
			name: "repo config false",
			config: &Config{
				Repo: &RepoConfig{AutoRestore: boolPtr(false)},
			},
			expected: false,
		},
		{
			name:     "default to true",
			config:   &Config{},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.config.GetAutoRestore(); result != tt.expected {
				t.Errorf("GetAutoRestore() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetMinimalMode(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected bool
	}{
		{
			name: "local override",
			config: &Config{
				Global: &GlobalConfig{MinimalMode: boolPtr(false)},
				Local:  &RepoConfig{MinimalMode: boolPtr(true)},
			},
			expected: true,
		},
		{
			name: "global fallback",
			config: &Config{
				Global: &GlobalConfig{MinimalMode: boolPtr(true)},
			},
			expected: true,
		},
		{
			name:     "default false",
			config:   &Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.config.GetMinimalMode(); result != tt.expected {
				t.Errorf("GetMinimalMode() = %v, want %v", result, tt.expected)
			}
		})
	}
}
