package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if !cfg.Browser.Headless {
		t.Error("headless should default to true")
	}
	if cfg.Extract.RunTimeout != 2*time.Minute {
		t.Errorf("run timeout = %v, want 2m", cfg.Extract.RunTimeout)
	}
	if cfg.Extract.ScriptTimeout != 30*time.Second {
		t.Errorf("script timeout = %v, want 30s", cfg.Extract.ScriptTimeout)
	}
	if cfg.Extract.GlobalsTimeout != 60*time.Second {
		t.Errorf("globals timeout = %v, want 60s", cfg.Extract.GlobalsTimeout)
	}
	if len(cfg.Extract.BlockedResourceTypes) == 0 {
		t.Error("blocked resource types should have defaults")
	}
	for _, rt := range cfg.Extract.BlockedResourceTypes {
		if rt == "Stylesheet" {
			t.Error("stylesheets must not be blocked by default")
		}
	}
	if cfg.Fetch.Timeout != 20*time.Second {
		t.Errorf("fetch timeout = %v, want 20s", cfg.Fetch.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOREHOUND_HEADLESS", "false")
	t.Setenv("LOREHOUND_GLOBALS_TIMEOUT", "90s")
	t.Setenv("LOREHOUND_BLOCKED_RESOURCES", "Image, Media")
	t.Setenv("LOREHOUND_SEED", "12345")
	t.Setenv("LOREHOUND_FETCH_RPS", "2.5")

	cfg := Load()

	if cfg.Browser.Headless {
		t.Error("headless override not applied")
	}
	if cfg.Extract.GlobalsTimeout != 90*time.Second {
		t.Errorf("globals timeout = %v, want 90s", cfg.Extract.GlobalsTimeout)
	}
	if len(cfg.Extract.BlockedResourceTypes) != 2 || cfg.Extract.BlockedResourceTypes[1] != "Media" {
		t.Errorf("blocked resources = %v, want [Image Media]", cfg.Extract.BlockedResourceTypes)
	}
	if cfg.Extract.Seed != 12345 {
		t.Errorf("seed = %d, want 12345", cfg.Extract.Seed)
	}
	if cfg.Fetch.RequestsPerSecond != 2.5 {
		t.Errorf("fetch rps = %v, want 2.5", cfg.Fetch.RequestsPerSecond)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("LOREHOUND_HEADLESS", "maybe")
	t.Setenv("LOREHOUND_GLOBALS_TIMEOUT", "soon")

	cfg := Load()
	if !cfg.Browser.Headless {
		t.Error("unparseable bool should fall back to default")
	}
	if cfg.Extract.GlobalsTimeout != 60*time.Second {
		t.Error("unparseable duration should fall back to default")
	}
}
