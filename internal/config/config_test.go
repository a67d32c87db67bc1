package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHome_EnvOverride(t *testing.T) {
	t.Setenv("OUTREACH_HOME", "/custom/home")

	if got := DefaultHome(); got != "/custom/home" {
		t.Errorf("DefaultHome() = %q, want the env override", got)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Setenv("OUTREACH_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Gmail.RateLimitQPS != 5 {
		t.Errorf("RateLimitQPS = %v, want default 5", cfg.Gmail.RateLimitQPS)
	}
	if cfg.Fallback.URL != "" {
		t.Errorf("Fallback.URL = %q, want empty (disabled)", cfg.Fallback.URL)
	}
}

func TestLoad_FromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)

	content := `
[oauth]
client_secrets = "/secrets/client_secret.json"

[fallback]
url = "https://hooks.example.com/mail"

[brands]
url = "https://project.supabase.co"
anon_key = "anon-key"

[gmail]
rate_limit_qps = 2.5
`
	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OAuth.ClientSecrets != "/secrets/client_secret.json" {
		t.Errorf("ClientSecrets = %q", cfg.OAuth.ClientSecrets)
	}
	if cfg.Fallback.URL != "https://hooks.example.com/mail" {
		t.Errorf("Fallback.URL = %q", cfg.Fallback.URL)
	}
	if cfg.Brands.URL != "https://project.supabase.co" || cfg.Brands.AnonKey != "anon-key" {
		t.Errorf("Brands = %+v", cfg.Brands)
	}
	if cfg.Gmail.RateLimitQPS != 2.5 {
		t.Errorf("RateLimitQPS = %v, want 2.5", cfg.Gmail.RateLimitQPS)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("OUTREACH_HOME", home)

	path := filepath.Join(home, "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(""); err == nil {
		t.Error("Load() on malformed file should fail")
	}
}

func TestConfigPaths(t *testing.T) {
	cfg := &Config{HomeDir: "/home/user/.outreach"}

	if got := cfg.TokensDir(); got != filepath.Join("/home/user/.outreach", "tokens") {
		t.Errorf("TokensDir() = %q", got)
	}
	if got := cfg.PrefsDir(); got != filepath.Join("/home/user/.outreach", "prefs") {
		t.Errorf("PrefsDir() = %q", got)
	}
	if got := cfg.ConfigFilePath(); got != filepath.Join("/home/user/.outreach", "config.toml") {
		t.Errorf("ConfigFilePath() = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := expandPath("~/secrets.json"); got != filepath.Join(home, "secrets.json") {
		t.Errorf("expandPath(~/) = %q", got)
	}
	if got := expandPath("/abs/path.json"); got != "/abs/path.json" {
		t.Errorf("expandPath(abs) = %q", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(empty) = %q", got)
	}
}
