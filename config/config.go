package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Browser Browser
	Extract Extract
	Fetch   Fetch
	Log     Log
}

// Browser controls the Rod browser instance.
type Browser struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all browser traffic.
	Proxy string
}

// Extract controls the browser extraction strategy.
type Extract struct {
	// RunTimeout is the hard deadline for the whole browser attempt.
	RunTimeout time.Duration // default: 2m

	// NavigationTimeout is the max time for the initial navigation.
	NavigationTimeout time.Duration // default: 60s

	// ScriptTimeout is the per-script attach wait during readiness.
	ScriptTimeout time.Duration // default: 30s

	// GlobalsTimeout bounds the combined wait for page data globals.
	GlobalsTimeout time.Duration // default: 60s

	// ReadinessPoll is the interval between readiness probes.
	ReadinessPoll time.Duration // default: 500ms

	// BlockedResourceTypes lists resource types to block during page load.
	// Stylesheets stay enabled: the target renders its list with CSS.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// Seed seeds the behavior simulator's randomness. 0 means time-based.
	Seed int64
}

// Fetch controls the direct-fetch strategy.
type Fetch struct {
	// Timeout is the per-endpoint request deadline.
	Timeout time.Duration // default: 20s

	// RequestsPerSecond spaces successive endpoint probes.
	RequestsPerSecond float64 // default: 1
}

// Log controls structured logging.
type Log struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: Browser{
			Headless:   envBoolOr("LOREHOUND_HEADLESS", true),
			NoSandbox:  envBoolOr("LOREHOUND_NO_SANDBOX", false),
			BrowserBin: os.Getenv("LOREHOUND_BROWSER_BIN"),
			Proxy:      os.Getenv("LOREHOUND_PROXY"),
		},
		Extract: Extract{
			RunTimeout:        envDurationOr("LOREHOUND_RUN_TIMEOUT", 2*time.Minute),
			NavigationTimeout: envDurationOr("LOREHOUND_NAV_TIMEOUT", 60*time.Second),
			ScriptTimeout:     envDurationOr("LOREHOUND_SCRIPT_TIMEOUT", 30*time.Second),
			GlobalsTimeout:    envDurationOr("LOREHOUND_GLOBALS_TIMEOUT", 60*time.Second),
			ReadinessPoll:     envDurationOr("LOREHOUND_READINESS_POLL", 500*time.Millisecond),
			BlockedResourceTypes: envSliceOr("LOREHOUND_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			Seed: envInt64Or("LOREHOUND_SEED", 0),
		},
		Fetch: Fetch{
			Timeout:           envDurationOr("LOREHOUND_FETCH_TIMEOUT", 20*time.Second),
			RequestsPerSecond: envFloatOr("LOREHOUND_FETCH_RPS", 1.0),
		},
		Log: Log{
			Level:  envOr("LOREHOUND_LOG_LEVEL", "info"),
			Format: envOr("LOREHOUND_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
