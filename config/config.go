// Package config defines the runtime configuration for wifiprobe and
// validates it before any network side effects happen.
package config

import (
	"fmt"
	"strings"
	"time"

	wperrors "wifiprobe/internal/errors"
)

// Mode names the single operation a wifiprobe invocation performs.
type Mode int

const (
	ModeHelp Mode = iota
	ModeList
	ModeScan
	ModeTrial
)

func (m Mode) String() string {
	switch m {
	case ModeList:
		return "list"
	case ModeScan:
		return "wifi"
	case ModeTrial:
		return "try-passwords"
	default:
		return "help"
	}
}

// Config holds every tuneable for a single wifiprobe invocation.
type Config struct {
	// ── Operation ────────────────────────────────────────────────────
	List          bool   // --list
	Wifi          bool   // --wifi
	Target        string // --try-passwords TARGET
	CandidateFile string // positional FILE after --try-passwords ("-" = stdin)

	// ── Trial engine ─────────────────────────────────────────────────
	Workers          int
	Serial           bool
	Settle           time.Duration
	AttemptTimeout   time.Duration
	Cleanup          bool // remove the saved profile after a failed attempt
	MaxCommandErrors int  // consecutive command errors before fail-fast (0 = off)
	Interface        string

	// ── Access gate ──────────────────────────────────────────────────
	Gate     bool
	GateHash string // bcrypt hash; never a plaintext secret

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	NoColor bool
	Stats   bool
	DryRun  bool
}

// Mode reports which operation the flags select.
func (c *Config) Mode() Mode {
	switch {
	case c.Target != "":
		return ModeTrial
	case c.List:
		return ModeList
	case c.Wifi:
		return ModeScan
	default:
		return ModeHelp
	}
}

// ApplyDefaults fills zero-valued tuneables.  Values already set by the
// environment or flags are left alone.
func (c *Config) ApplyDefaults() {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers()
	}
	if c.Settle == 0 {
		c.Settle = DefaultSettle
	}
	if c.AttemptTimeout == 0 {
		c.AttemptTimeout = DefaultAttemptTimeout
	}
}

// EffectiveWorkers is the pool size the engine should use.
func (c *Config) EffectiveWorkers() int {
	if c.Serial {
		return 1
	}
	return c.Workers
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// Every error is a *errors.ConfigError with a hint where one helps.
func (c *Config) Validate() error {
	selected := 0
	for _, on := range []bool{c.List, c.Wifi, c.Target != ""} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return &wperrors.ConfigError{
			Field:   "list/--wifi/--try-passwords",
			Message: "options are mutually exclusive",
			Hint:    "run one operation per invocation",
		}
	}

	if c.Target != "" {
		if strings.TrimSpace(c.Target) == "" {
			return &wperrors.ConfigError{
				Field:   "try-passwords",
				Value:   fmt.Sprintf("%q", c.Target),
				Message: "target network name is blank",
			}
		}
		if c.CandidateFile == "" {
			return &wperrors.ConfigError{
				Field:   "try-passwords",
				Value:   c.Target,
				Message: "candidate file required",
				Hint:    "usage: --try-passwords <TARGET> <FILE>",
			}
		}
	}

	if c.Workers < 1 {
		return &wperrors.ConfigError{
			Field:   "workers",
			Value:   c.Workers,
			Message: "must be at least 1",
			Hint:    "use --serial to run one trial at a time",
		}
	}
	if c.Settle <= 0 {
		return &wperrors.ConfigError{
			Field:   "settle",
			Value:   c.Settle,
			Message: "must be positive",
		}
	}
	if c.AttemptTimeout <= c.Settle {
		return &wperrors.ConfigError{
			Field:   "attempt-timeout",
			Value:   c.AttemptTimeout,
			Message: fmt.Sprintf("must exceed the settle window (%v)", c.Settle),
			Hint:    "the attempt timeout bounds the join commands plus the settle wait",
		}
	}
	if c.MaxCommandErrors < 0 {
		return &wperrors.ConfigError{
			Field:   "max-command-errors",
			Value:   c.MaxCommandErrors,
			Message: "must not be negative",
			Hint:    "use 0 to disable fail-fast",
		}
	}
	if c.Gate && c.GateHash == "" {
		return &wperrors.ConfigError{
			Field:   "gate",
			Message: "no gate hash configured",
			Hint:    "set WIFIPROBE_GATE_HASH to a bcrypt hash",
		}
	}
	return nil
}
