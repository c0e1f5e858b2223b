// Package config handles the gatekeeper config file. The file carries
// environment-level settings (database path, endpoint overrides, UI
// preferences); the player's API key and provider choice live in the
// database, not here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ProviderEndpoint overrides one provider's endpoint and model. Empty fields
// keep the official endpoint and the built-in default model.
type ProviderEndpoint struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// Config represents the gatekeeper configuration file.
type Config struct {
	// DatabasePath is where progress and settings are stored.
	DatabasePath string `yaml:"database_path,omitempty"`

	// LogFile receives structured logs. Empty logs to stdout.
	LogFile string `yaml:"log_file,omitempty"`

	// Notifications enables desktop notifications on level passes. A pointer
	// so an explicit `notifications: false` survives the merge with the
	// defaults; nil means enabled. Mergo merges the pointees of two non-nil
	// pointers and would drop a false there, so the default stays nil.
	Notifications *bool `yaml:"notifications,omitempty"`

	// Per-provider endpoint overrides, mostly for proxies.
	OpenAI ProviderEndpoint `yaml:"openai,omitempty"`
	Groq   ProviderEndpoint `yaml:"groq,omitempty"`
	Gemini ProviderEndpoint `yaml:"gemini,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DatabasePath: defaultDatabasePath(),
	}
}

// NotificationsEnabled reports the effective notification setting.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// GetConfigPath returns the default config file path.
// Can be overridden via GATEKEEPER_CONFIG_PATH environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("GATEKEEPER_CONFIG_PATH"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.gatekeeper/config.yaml"
	}
	return filepath.Join(homeDir, ".gatekeeper", "config.yaml")
}

// Load reads the config file at path and layers it over the defaults. A
// missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(expandPath(path)) //nolint:gosec // G304: User-specified config path is intentional
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// File values take precedence over defaults.
	if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
func Save(cfg *Config, path string) error {
	expandedPath := expandPath(path)

	dir := filepath.Dir(expandedPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(expandedPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func defaultDatabasePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.gatekeeper/gatekeeper.db"
	}
	return filepath.Join(homeDir, ".gatekeeper", "gatekeeper.db")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
