package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.PollInterval.Std() != time.Minute {
		t.Errorf("Expected default poll interval 1m, got %s", cfg.Server.PollInterval.Std())
	}
	if cfg.Server.CacheTTL.Std() != time.Minute {
		t.Errorf("Expected default cache TTL 1m, got %s", cfg.Server.CacheTTL.Std())
	}
	if cfg.Scene.Theme != "dark" {
		t.Errorf("Expected default theme dark, got %s", cfg.Scene.Theme)
	}
	if cfg.Scene.SubscriberCount != 30 {
		t.Errorf("Expected default subscriber count 30, got %d", cfg.Scene.SubscriberCount)
	}
}

func TestLoadFile(t *testing.T) {
	content := `
[server]
addr = ":9090"
poll_interval = "30s"
cache_ttl = "5m"

[scene]
theme = "light"
subscriber_count = 12

[assets]
cache_dir = "/tmp/atrium-assets"
max_age = "24h"

[providers]
enabled = ["rules", "googlegenai"]
disabled = ["remote"]
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Expected addr :9090, got %s", cfg.Server.Addr)
	}
	if cfg.Server.PollInterval.Std() != 30*time.Second {
		t.Errorf("Expected poll interval 30s, got %s", cfg.Server.PollInterval.Std())
	}
	if cfg.Server.CacheTTL.Std() != 5*time.Minute {
		t.Errorf("Expected cache TTL 5m, got %s", cfg.Server.CacheTTL.Std())
	}
	if cfg.Scene.Theme != "light" {
		t.Errorf("Expected theme light, got %s", cfg.Scene.Theme)
	}
	if cfg.Scene.SubscriberCount != 12 {
		t.Errorf("Expected subscriber count 12, got %d", cfg.Scene.SubscriberCount)
	}
	if cfg.Assets.CacheDir != "/tmp/atrium-assets" {
		t.Errorf("Expected cache dir /tmp/atrium-assets, got %s", cfg.Assets.CacheDir)
	}
	if cfg.Assets.MaxAge.Std() != 24*time.Hour {
		t.Errorf("Expected max age 24h, got %s", cfg.Assets.MaxAge.Std())
	}
	if len(cfg.Providers.Enabled) != 2 || cfg.Providers.Enabled[0] != "rules" {
		t.Errorf("Expected enabled providers [rules googlegenai], got %v", cfg.Providers.Enabled)
	}
	if len(cfg.Providers.Disabled) != 1 || cfg.Providers.Disabled[0] != "remote" {
		t.Errorf("Expected disabled providers [remote], got %v", cfg.Providers.Disabled)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	content := `
[server]
addr = ":7000"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("Expected addr :7000, got %s", cfg.Server.Addr)
	}
	if cfg.Server.PollInterval.Std() != time.Minute {
		t.Errorf("Expected default poll interval preserved, got %s", cfg.Server.PollInterval.Std())
	}
	if cfg.Scene.Theme != "dark" {
		t.Errorf("Expected default theme preserved, got %s", cfg.Scene.Theme)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config path")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for invalid TOML")
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	content := `
[server]
poll_interval = "not-a-duration"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected error for invalid duration string")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(90 * time.Second)
	text, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "1m30s" {
		t.Errorf("Expected 1m30s, got %s", string(text))
	}

	var back Duration
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if back.Std() != 90*time.Second {
		t.Errorf("Expected 90s, got %s", back.Std())
	}
}
