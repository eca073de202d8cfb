package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go, via ApplyDefaults)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the WIFIPROBE_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := envInt("WIFIPROBE_WORKERS"); v > 0 {
		cfg.Workers = v
	}
	if envBool("WIFIPROBE_SERIAL") {
		cfg.Serial = true
	}
	if v := envInt("WIFIPROBE_SETTLE_MS"); v > 0 {
		cfg.Settle = time.Duration(v) * time.Millisecond
	}
	if v := envInt("WIFIPROBE_ATTEMPT_TIMEOUT"); v > 0 {
		cfg.AttemptTimeout = secondsDuration(v)
	}
	if envBool("WIFIPROBE_CLEANUP") {
		cfg.Cleanup = true
	}
	if v := envInt("WIFIPROBE_MAX_COMMAND_ERRORS"); v > 0 {
		cfg.MaxCommandErrors = v
	}
	if v := os.Getenv("WIFIPROBE_INTERFACE"); v != "" {
		cfg.Interface = v
	}

	// Access gate
	if v := os.Getenv("WIFIPROBE_GATE_HASH"); v != "" {
		cfg.GateHash = v
	}

	// Output
	if envBool("WIFIPROBE_NO_COLOR") || os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	if v := envInt("WIFIPROBE_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
