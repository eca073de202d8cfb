package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"wifiprobe/internal/netstat"
	"wifiprobe/internal/probe"
	"wifiprobe/internal/trial"
	"wifiprobe/internal/wlan"
)

func TestConnections(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Connections([]netstat.Connection{
		{LocalAddress: "127.0.0.1:631", RemoteAddress: "N/A", Protocol: netstat.TCP, Status: "LISTEN"},
		{LocalAddress: "[fe80::1c2b:3aff:fe4d:5e6f]:54321", RemoteAddress: "[2001:db8::1]:443", Protocol: netstat.TCP6, Status: "ESTABLISHED"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Local Address") || !strings.Contains(lines[0], "Remote Address") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Trim(lines[1], "-") != "" {
		t.Errorf("separator = %q", lines[1])
	}

	// Columns line up even though the IPv6 address is wider than the
	// default column.
	col := strings.Index(lines[0], "Remote Address")
	for _, l := range lines[2:] {
		if l[col-1] != ' ' || l[col] == ' ' {
			t.Errorf("row misaligned at column %d: %q", col, l)
		}
	}
	if !strings.HasSuffix(lines[3], "ESTABLISHED") {
		t.Errorf("last row = %q", lines[3])
	}
}

func TestConnections_Empty(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Connections(nil)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("want header and separator only, got %q", buf.String())
	}
	if len(lines[1]) != colLocal+colRemote+colProtocol+colStatus+3 {
		t.Errorf("separator width = %d", len(lines[1]))
	}
}

func TestNetworks(t *testing.T) {
	tests := []struct {
		name string
		nets []wlan.Network
		want []string
	}{
		{
			name: "ssid only",
			nets: []wlan.Network{{SSID: "HomeNet", Signal: -1}, {SSID: "Cafe"}},
			want: []string{"Available Wi-Fi networks:", "HomeNet", "Cafe"},
		},
		{
			name: "with details",
			nets: []wlan.Network{{SSID: "HomeNet", Signal: 72, Security: "WPA2"}},
			want: []string{"Available Wi-Fi networks:", "HomeNet   72%  WPA2"},
		},
		{
			name: "none",
			want: []string{"Available Wi-Fi networks:", "(none visible)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, false).Networks(tt.nets)
			got := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusLines(t *testing.T) {
	tr := probe.Trial{Target: "HomeNet", Candidate: "abcd", Index: 1}
	tests := []struct {
		name string
		emit func(r *Reporter)
		want string
	}{
		{"trying", func(r *Reporter) { r.Trying(tr) }, "Trying password: abcd"},
		{"success", func(r *Reporter) { r.Outcome(probe.Outcome{Trial: tr, Result: probe.Success}) },
			"Successfully connected to HomeNet with password: abcd"},
		{"failure", func(r *Reporter) { r.Outcome(probe.Outcome{Trial: tr, Result: probe.Failure}) },
			"Failed to connect with password: abcd"},
		{"error", func(r *Reporter) {
			r.Outcome(probe.Outcome{Trial: tr, Result: probe.Error, Err: fmt.Errorf("exit status 8")})
		}, "Error trying password abcd: exit status 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(New(&buf, false))
			if got := strings.TrimRight(buf.String(), "\n"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColor(t *testing.T) {
	var plain, colored bytes.Buffer
	o := probe.Outcome{Trial: probe.Trial{Target: "HomeNet", Candidate: "x"}, Result: probe.Success}

	New(&plain, false).Outcome(o)
	New(&colored, true).Outcome(o)

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output has escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[32m") {
		t.Errorf("coloured output lacks green: %q", colored.String())
	}
}

func TestColorEnabled(t *testing.T) {
	if ColorEnabled(&bytes.Buffer{}, false) {
		t.Error("a buffer is not a terminal")
	}
	if ColorEnabled(nil, true) {
		t.Error("noColor must win")
	}
}

func TestSummary(t *testing.T) {
	winner := probe.Outcome{Trial: probe.Trial{Target: "HomeNet", Candidate: "pw"}, Result: probe.Success}
	tests := []struct {
		name string
		rep  trial.Report
		want string
	}{
		{
			name: "satisfied",
			rep:  trial.Report{Target: "HomeNet", State: trial.StateSatisfied, Winner: &winner, Submitted: 3, Elapsed: 1500 * time.Millisecond},
			want: "Key for HomeNet found after 3 attempt(s) in 1.5s.",
		},
		{
			name: "exhausted",
			rep: trial.Report{Target: "HomeNet", State: trial.StateExhausted, Submitted: 2, Outcomes: []probe.Outcome{
				{Result: probe.Failure}, {Result: probe.Error},
			}},
			want: "No candidate joined HomeNet: 2 tried, 1 failed, 1 error(s) in 0s.",
		},
		{
			name: "cancelled",
			rep:  trial.Report{Target: "HomeNet", State: trial.StateCancelled, Submitted: 4},
			want: "Run cancelled after 4 attempt(s) in 0s.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(&buf, false).Summary(tt.rep)
			if got := strings.TrimRight(buf.String(), "\n"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
