package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	wperrors "wifiprobe/internal/errors"
	"wifiprobe/internal/gate"
	"wifiprobe/internal/metrics"
	"wifiprobe/internal/netstat"
	"wifiprobe/internal/report"
	"wifiprobe/internal/wlan"
	"wifiprobe/util"
)

func writeList(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidates.txt")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTrialMode(b wlan.Backend, file string, out *bytes.Buffer) *TrialMode {
	return &TrialMode{
		Backend:        b,
		Target:         "HomeNet",
		CandidateFile:  file,
		Serial:         true,
		Settle:         20 * time.Millisecond,
		AttemptTimeout: time.Second,
		Reporter:       report.New(out, false),
		Metrics:        metrics.New(),
		Logger:         util.NewLogger(0),
		Privileged:     func() bool { return true },
	}
}

// ── ListMode ─────────────────────────────────────────────────────────

func TestListMode(t *testing.T) {
	var out bytes.Buffer
	m := &ListMode{
		Lister: netstat.ListerFunc(func(context.Context) ([]netstat.Connection, error) {
			return []netstat.Connection{{LocalAddress: "0.0.0.0:22", RemoteAddress: "N/A", Protocol: netstat.TCP, Status: "LISTEN"}}, nil
		}),
		Reporter: report.New(&out, false),
		Logger:   util.NewLogger(0),
	}

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Local Address") || !strings.Contains(out.String(), "0.0.0.0:22") {
		t.Errorf("output = %q", out.String())
	}
}

func TestListMode_Error(t *testing.T) {
	denied := fmt.Errorf("open /proc/net/tcp: permission denied")
	m := &ListMode{
		Lister: netstat.ListerFunc(func(context.Context) ([]netstat.Connection, error) {
			return nil, denied
		}),
		Reporter: report.New(&bytes.Buffer{}, false),
		Logger:   util.NewLogger(0),
	}

	if err := m.Run(context.Background()); !wperrors.Is(err, denied) {
		t.Errorf("err = %v", err)
	}
}

// ── ScanMode ─────────────────────────────────────────────────────────

func TestScanMode(t *testing.T) {
	tests := []struct {
		name    string
		backend wlan.Backend
		wantErr bool
		want    string
	}{
		{
			name:    "lists networks",
			backend: wlan.NewStub("HomeNet", "pw", wlan.Network{SSID: "HomeNet"}, wlan.Network{SSID: "Cafe"}),
			want:    "Available Wi-Fi networks:\nHomeNet\nCafe\n",
		},
		{
			name:    "unsupported yields nothing",
			backend: wlan.Unsupported{OS: "plan9"},
			want:    "Listing Wi-Fi networks is not supported on this platform.\n",
		},
		{
			name:    "scan failure",
			backend: &wlan.Stub{ScanErr: fmt.Errorf("radio off")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			m := &ScanMode{Backend: tt.backend, Reporter: report.New(&out, false), Logger: util.NewLogger(0)}

			err := m.Run(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if !tt.wantErr && out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

// ── TrialMode ────────────────────────────────────────────────────────

func TestTrialMode_FindsKey(t *testing.T) {
	var out bytes.Buffer
	m := newTrialMode(wlan.NewStub("HomeNet", "correct-pw"), writeList(t, "1234\nabcd\n\ncorrect-pw\n"), &out)
	m.Stats = true

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"Trying password: 1234",
		"Failed to connect with password: abcd",
		"Successfully connected to HomeNet with password: correct-pw",
		"Key for HomeNet found after 3 attempt(s)",
		`"trials_started": 3`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestTrialMode_NoKeyIsNotAnError(t *testing.T) {
	var out bytes.Buffer
	m := newTrialMode(wlan.NewStub("HomeNet", "other"), writeList(t, "1234\nabcd\n"), &out)

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No candidate joined HomeNet: 2 tried, 2 failed") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTrialMode_SetupErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")

	tests := []struct {
		name    string
		backend wlan.Backend
		file    string
		check   func(error) bool
	}{
		{"missing file", wlan.NewStub("HomeNet", "pw"), missing, func(err error) bool {
			return wperrors.Is(err, wperrors.ErrNotFound) && strings.Contains(err.Error(), "Password file '"+missing+"' not found.")
		}},
		{"empty file", wlan.NewStub("HomeNet", "pw"), writeList(t, "\n \n"), func(err error) bool {
			return wperrors.Is(err, wperrors.ErrNoCandidates)
		}},
		{"unsupported platform", wlan.Unsupported{OS: "plan9"}, missing, wperrors.IsUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			stub, _ := tt.backend.(*wlan.Stub)
			err := newTrialMode(tt.backend, tt.file, &out).Run(context.Background())
			if err == nil || !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
			if out.Len() != 0 {
				t.Errorf("setup failure printed trial output: %q", out.String())
			}
			if stub != nil && stub.Joins() != 0 {
				t.Error("joins attempted despite setup failure")
			}
		})
	}
}

func TestTrialMode_UnprivilegedNotice(t *testing.T) {
	var out bytes.Buffer
	m := newTrialMode(wlan.NewStub("HomeNet", "pw"), writeList(t, "pw\n"), &out)
	m.Privileged = func() bool { return false }

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "Not running as root; stub may refuse") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTrialMode_BreakerStopsCommands(t *testing.T) {
	stub := wlan.NewStub("HomeNet", "pw")
	boom := fmt.Errorf("nmcli: exit status 8")
	stub.FailKeys = map[string]error{"a": boom, "b": boom}

	var out bytes.Buffer
	m := newTrialMode(stub, writeList(t, "a\nb\npw\n"), &out)
	m.MaxCommandErrors = 2

	if err := m.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if stub.Joins() != 0 {
		t.Errorf("joins = %d after the breaker opened", stub.Joins())
	}
	if !strings.Contains(out.String(), "circuit breaker is open") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTrialMode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	m := newTrialMode(wlan.NewStub("HomeNet", "pw"), writeList(t, "a\nb\n"), &out)

	err := m.Run(ctx)
	if !wperrors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

// ── GatedMode ────────────────────────────────────────────────────────

type countMode struct{ runs int }

func (c *countMode) Run(context.Context) error { c.runs++; return nil }

func TestGatedMode(t *testing.T) {
	check := gate.CheckerFunc(func(p []byte) error {
		if string(p) == "open sesame" {
			return nil
		}
		return wperrors.ErrGateDenied
	})
	read := func(s string) gate.Reader {
		return func() ([]byte, error) { return []byte(s), nil }
	}

	t.Run("granted", func(t *testing.T) {
		inner := &countMode{}
		var prompt bytes.Buffer
		m := &GatedMode{Inner: inner, Checker: check, Prompt: &prompt, Read: read("open sesame")}
		if err := m.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		if inner.runs != 1 {
			t.Errorf("inner ran %d times", inner.runs)
		}
		if !strings.HasPrefix(prompt.String(), gate.DefaultPrompt) {
			t.Errorf("prompt = %q", prompt.String())
		}
	})

	t.Run("denied", func(t *testing.T) {
		inner := &countMode{}
		m := &GatedMode{Inner: inner, Checker: check, Prompt: &bytes.Buffer{}, Read: read("guess")}
		if err := m.Run(context.Background()); !wperrors.Is(err, wperrors.ErrGateDenied) {
			t.Fatalf("err = %v", err)
		}
		if inner.runs != 0 {
			t.Error("inner mode ran after a denied gate")
		}
	})
}
