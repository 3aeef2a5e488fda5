package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Errorf("unexpected base URL %q", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("unexpected poll interval %v", cfg.PollInterval)
	}
	if cfg.RendererReadyRetries != 10 {
		t.Errorf("unexpected ready retries %d", cfg.RendererReadyRetries)
	}
	if !cfg.ViewerHeadless {
		t.Errorf("headless should default to true")
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://backend:8080")
	t.Setenv("POLL_INTERVAL", "30s")
	t.Setenv("VIEWER_HEADLESS", "false")
	t.Setenv("GENERATION_PER_MIN", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "http://backend:8080" {
		t.Errorf("env base URL not applied, got %q", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("env poll interval not applied, got %v", cfg.PollInterval)
	}
	if cfg.ViewerHeadless {
		t.Errorf("env headless override not applied")
	}
	if cfg.GenerationPerMin != 5 {
		t.Errorf("env generation rate not applied, got %d", cfg.GenerationPerMin)
	}
}

func TestYAMLFileSeedsValuesAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	content := []byte("api_base_url: http://from-file:9000\nlog_level: debug\npoll_interval: 15s\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("SESSION_CONFIG", path)
	t.Setenv("API_BASE_URL", "http://from-env:7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("file value not applied, got %q", cfg.LogLevel)
	}
	if cfg.PollInterval != 15*time.Second {
		t.Errorf("file poll interval not applied, got %v", cfg.PollInterval)
	}
	if cfg.APIBaseURL != "http://from-env:7000" {
		t.Errorf("environment must win over the file, got %q", cfg.APIBaseURL)
	}
}

func TestMissingConfigFileFails(t *testing.T) {
	t.Setenv("SESSION_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestMalformedEnvValuesFallBack(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "not-a-duration")
	t.Setenv("GENERATION_PER_MIN", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("malformed duration should fall back to default, got %v", cfg.PollInterval)
	}
	if cfg.GenerationPerMin != 20 {
		t.Errorf("malformed int should fall back to default, got %d", cfg.GenerationPerMin)
	}
}
