package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"listen_addr: \":9999\"",
		"auth_token: file-token",
		"root: " + root,
		"allow_delete: true",
		"log_level: debug",
	}, "\n")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9999" || cfg.AuthToken != "file-token" || !cfg.AllowDelete {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("expected default log format, got %q", cfg.LogFormat)
	}
}

func TestEnvOverrides(t *testing.T) {
	root := t.TempDir()
	t.Setenv("WARDEN_AUTH_TOKEN", "env-token")
	t.Setenv("WARDEN_ROOT", root)
	t.Setenv("WARDEN_ALLOW_DELETE", "true")
	t.Setenv("WARDEN_LISTEN_ADDR", ":7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthToken != "env-token" || cfg.Root != root || !cfg.AllowDelete || cfg.ListenAddr != ":7777" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestMissingToken(t *testing.T) {
	t.Setenv("WARDEN_AUTH_TOKEN", "")
	t.Setenv("WARDEN_ROOT", t.TempDir())

	if _, err := Load(""); err == nil {
		t.Fatalf("expected missing token error")
	}
}

func TestBadRoot(t *testing.T) {
	t.Setenv("WARDEN_AUTH_TOKEN", "x")
	t.Setenv("WARDEN_ROOT", filepath.Join(t.TempDir(), "nope"))

	if _, err := Load(""); err == nil {
		t.Fatalf("expected bad root error")
	}
}

func TestBadBool(t *testing.T) {
	t.Setenv("WARDEN_AUTH_TOKEN", "x")
	t.Setenv("WARDEN_ROOT", t.TempDir())
	t.Setenv("WARDEN_ALLOW_DELETE", "maybe")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected parse error")
	}
}
