package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
storage:
  driver: postgres
  dsn: postgres://localhost/prepify
quiz:
  match: normalized
  sprint_seconds: 15
auth:
  secret: from-file
  token_ttl: 2h
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PREPIFY_AUTH_SECRET", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Quiz.Match != "normalized" || cfg.Quiz.SprintSeconds != 15 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Fatalf("expected env secret to win, got %q", cfg.Auth.Secret)
	}
	if cfg.PostgresDSN() != "postgres://localhost/prepify" {
		t.Fatalf("unexpected postgres dsn %q", cfg.PostgresDSN())
	}
	if d := TTLDuration(cfg.Auth.TokenTTL, time.Hour); d != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", d)
	}
}

func TestLoadDefaultsDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"8080\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Fatalf("expected sqlite default, got %q", cfg.Storage.Driver)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for empty, got %v", d)
	}
	if d := TTLDuration("soon", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback for garbage, got %v", d)
	}
}
