package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("default base url: %q", cfg.BaseURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("default timeout: %v", cfg.Timeout)
	}
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: https://staging.example/api\n  timeout: 10s\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://staging.example/api" || cfg.Timeout != 10*time.Second {
		t.Fatalf("file values not applied: %+v", cfg)
	}

	t.Setenv("NOTIFY_API_BASE_URL", "https://local.example/api")
	t.Setenv("NOTIFY_API_TIMEOUT", "3s")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://local.example/api" || cfg.Timeout != 3*time.Second {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [not a map"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("want parse error")
	}

	t.Setenv("NOTIFY_API_TIMEOUT", "not-a-duration")
	if _, err := Load(""); err == nil {
		t.Fatalf("want duration parse error")
	}
}
