// Package config handles loading and managing outreach configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the outreach configuration.
type Config struct {
	OAuth    OAuthConfig    `toml:"oauth"`
	Fallback FallbackConfig `toml:"fallback"`
	Brands   BrandsConfig   `toml:"brands"`
	Gmail    GmailConfig    `toml:"gmail"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// OAuthConfig holds OAuth configuration.
type OAuthConfig struct {
	ClientSecrets string `toml:"client_secrets"`
}

// FallbackConfig holds the generic fallback transport configuration.
// An empty URL disables the fallback entirely.
type FallbackConfig struct {
	URL string `toml:"url"`
}

// BrandsConfig holds the remote brand directory configuration.
type BrandsConfig struct {
	URL     string `toml:"url"`
	AnonKey string `toml:"anon_key"`
}

// GmailConfig holds Gmail transport tuning.
type GmailConfig struct {
	RateLimitQPS float64 `toml:"rate_limit_qps"`
}

// DefaultHome returns the default outreach home directory.
// Respects the OUTREACH_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("OUTREACH_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".outreach"
	}
	return filepath.Join(home, ".outreach")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.outreach/config.toml).
// The file itself is optional; defaults apply when it is absent.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Gmail: GmailConfig{
			RateLimitQPS: 5,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.OAuth.ClientSecrets = expandPath(cfg.OAuth.ClientSecrets)

	return cfg, nil
}

// TokensDir returns the path to the OAuth tokens directory.
func (c *Config) TokensDir() string {
	return filepath.Join(c.HomeDir, "tokens")
}

// PrefsDir returns the path to the key-value stores directory.
func (c *Config) PrefsDir() string {
	return filepath.Join(c.HomeDir, "prefs")
}

// ConfigFilePath returns the path of the config file in use.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.HomeDir, "config.toml")
}

// EnsureHomeDir creates the home directory if it doesn't exist.
func (c *Config) EnsureHomeDir() error {
	return os.MkdirAll(c.HomeDir, 0700)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
