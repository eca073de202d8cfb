// Package errors provides domain-specific error types for wifiprobe.
//
// These types carry structured context (operation, target, platform)
// so callers can tell "wrong password" apart from "could not attempt
// at all", and so setup errors carry a hint for the user.
package errors

import (
	"errors"
	"fmt"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrUnsupported  = errors.New("unsupported platform")
	ErrCircuitOpen  = errors.New("circuit breaker is open")
	ErrTimeout      = errors.New("operation timed out")
	ErrGateDenied   = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrNoCandidates = errors.New("no candidates to try")
)

// ── Structured error types ───────────────────────────────────────────

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
	Err     error       // underlying cause (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnsupportedPlatformError reports that a wireless operation has no
// backend on the running OS.  It always unwraps to [ErrUnsupported].
type UnsupportedPlatformError struct {
	Op string // "save-profile", "connect", "scan", ...
	OS string // runtime.GOOS of the host
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Op, ErrUnsupported, e.OS)
}

func (e *UnsupportedPlatformError) Unwrap() error { return ErrUnsupported }

// ProbeError is a failure to execute one trial.  It is local to a
// single candidate and never aborts a run.
type ProbeError struct {
	Op     string // "save-profile", "connect", "verify", "panic"
	Target string
	Index  int // position of the candidate in the submitted list
	Err    error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s %q (candidate #%d): %v", e.Op, e.Target, e.Index+1, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// VerificationError is returned when the connection state could not be
// determined.  It must never be read as "not connected".
type VerificationError struct {
	Target string
	Err    error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verify %q: %v", e.Target, e.Err)
}

func (e *VerificationError) Unwrap() error { return e.Err }

// CommandError records a failed external command together with the
// tail of its output, which usually holds the real reason.
type CommandError struct {
	Name     string
	ExitCode int // -1 when the process never exited normally
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Output)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ── Constructors ─────────────────────────────────────────────────────

// Unsupported creates an UnsupportedPlatformError.
func Unsupported(op, goos string) *UnsupportedPlatformError {
	return &UnsupportedPlatformError{Op: op, OS: goos}
}

// WrapProbe creates a ProbeError.  A nil err yields nil.
func WrapProbe(op, target string, index int, err error) error {
	if err == nil {
		return nil
	}
	return &ProbeError{Op: op, Target: target, Index: index, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsUnsupported reports whether err means the platform has no backend.
func IsUnsupported(err error) bool { return errors.Is(err, ErrUnsupported) }

// IsVerification reports whether err came from a failed state query.
func IsVerification(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}

// CommandExitCode returns the exit code carried by a *CommandError in
// err's chain, or -1 when there is none.
func CommandExitCode(err error) int {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce.ExitCode
	}
	return -1
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use wifiprobe/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
