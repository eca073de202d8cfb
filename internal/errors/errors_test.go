package errors

import (
	"fmt"
	"io"
	"testing"
)

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "workers",
				Value:   0,
				Message: "must be at least 1",
				Hint:    "use --serial to run one trial at a time",
			},
			want: "config: --workers=0: must be at least 1\n  hint: use --serial to run one trial at a time",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "try-passwords",
				Message: "candidate file required",
			},
			want: "config: --try-passwords: candidate file required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	err := &ConfigError{Field: "file", Message: "missing", Err: ErrNotFound}
	if !Is(err, ErrNotFound) {
		t.Error("should unwrap to ErrNotFound")
	}
}

func TestUnsupportedPlatformError(t *testing.T) {
	err := Unsupported("connect", "plan9")
	if got, want := err.Error(), "connect: unsupported platform (plan9)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !IsUnsupported(err) {
		t.Error("should match ErrUnsupported")
	}
	wrapped := fmt.Errorf("attempt: %w", err)
	if !IsUnsupported(wrapped) {
		t.Error("wrapped error should still match ErrUnsupported")
	}
}

func TestProbeError_Format(t *testing.T) {
	err := WrapProbe("connect", "HomeNet", 2, io.EOF)
	want := `probe connect "HomeNet" (candidate #3): EOF`
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestWrapProbe_Nil(t *testing.T) {
	if err := WrapProbe("connect", "x", 0, nil); err != nil {
		t.Errorf("WrapProbe(nil) = %v, want nil", err)
	}
}

func TestVerificationError(t *testing.T) {
	inner := fmt.Errorf("permission denied")
	ve := &VerificationError{Target: "HomeNet", Err: inner}
	pe := WrapProbe("verify", "HomeNet", 0, ve)

	if !IsVerification(pe) {
		t.Error("probe error should expose the verification error")
	}
	if !Is(pe, inner) {
		t.Error("should unwrap to inner error")
	}
	if IsVerification(inner) {
		t.Error("plain error is not a verification error")
	}
}

func TestCommandError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  CommandError
		want string
	}{
		{"with output", CommandError{Name: "nmcli", Err: fmt.Errorf("exit status 10"), Output: "No network with SSID"}, "nmcli: exit status 10: No network with SSID"},
		{"no output", CommandError{Name: "netsh", Err: fmt.Errorf("exit status 1")}, "netsh: exit status 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandExitCode(t *testing.T) {
	ce := &CommandError{Name: "nmcli", ExitCode: 4, Err: fmt.Errorf("exit status 4")}
	if got := CommandExitCode(fmt.Errorf("connect: %w", ce)); got != 4 {
		t.Errorf("CommandExitCode() = %d, want 4", got)
	}
	if got := CommandExitCode(io.EOF); got != -1 {
		t.Errorf("CommandExitCode(plain) = %d, want -1", got)
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrUnsupported, ErrCircuitOpen, ErrTimeout,
		ErrGateDenied, ErrNotFound, ErrNoCandidates,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
