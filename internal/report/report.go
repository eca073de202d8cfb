// Package report renders command results for the terminal: the socket
// table, visible networks, live trial status lines and the run summary.
//
// Reports go to stdout; diagnostics stay on the logger's stderr.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"wifiprobe/internal/netstat"
	"wifiprobe/internal/probe"
	"wifiprobe/internal/trial"
	"wifiprobe/internal/wlan"
)

// Minimum column widths of the connection table.
const (
	colLocal    = 25
	colRemote   = 25
	colProtocol = 10
	colStatus   = 15
)

// ColorEnabled reports whether w should receive ANSI colour: it must be
// a terminal and noColor must be false.
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Reporter writes reports to one writer.  It is safe for concurrent
// use.
type Reporter struct {
	mu  sync.Mutex
	out io.Writer

	ok, fail, bad, warn, dim, bold *color.Color
}

// New returns a Reporter writing to w, with colour when useColor is
// set.
func New(w io.Writer, useColor bool) *Reporter {
	style := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return &Reporter{
		out:  w,
		ok:   style(color.FgGreen),
		fail: style(color.FgYellow),
		bad:  style(color.FgRed),
		warn: style(color.FgMagenta),
		dim:  style(color.Faint),
		bold: style(color.Bold),
	}
}

func (r *Reporter) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

// ── Connection table ─────────────────────────────────────────────────

// Connections prints the socket table.  Columns widen to fit the
// longest value, so IPv6 addresses stay aligned.
func (r *Reporter) Connections(conns []netstat.Connection) {
	widths := []int{colLocal, colRemote, colProtocol, colStatus}
	rows := make([][]string, 0, len(conns))
	for _, c := range conns {
		row := []string{c.LocalAddress, c.RemoteAddress, string(c.Protocol), string(c.Status)}
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	writeRow(&b, widths, []string{"Local Address", "Remote Address", "Protocol", "Status"})
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	b.WriteString(strings.Repeat("-", total))
	b.WriteByte('\n')
	for _, row := range rows {
		writeRow(&b, widths, row)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	io.WriteString(r.out, b.String()) //nolint:errcheck
}

func writeRow(b *strings.Builder, widths []int, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i == len(cells)-1 {
			b.WriteString(cell)
			continue
		}
		b.WriteString(runewidth.FillRight(cell, widths[i]))
	}
	b.WriteByte('\n')
}

// ── Visible networks ─────────────────────────────────────────────────

// Networks prints visible networks one per line, with signal and
// security when the backend reports them.
func (r *Reporter) Networks(nets []wlan.Network) {
	var b strings.Builder
	b.WriteString("Available Wi-Fi networks:\n")

	width := 0
	for _, n := range nets {
		width = max(width, runewidth.StringWidth(n.SSID))
	}
	for _, n := range nets {
		var extra []string
		if n.Signal > 0 {
			extra = append(extra, fmt.Sprintf("%3d%%", n.Signal))
		}
		if n.Security != "" {
			extra = append(extra, n.Security)
		}
		if len(extra) == 0 {
			b.WriteString(n.SSID)
		} else {
			b.WriteString(runewidth.FillRight(n.SSID, width))
			b.WriteString("  ")
			b.WriteString(r.dim.Sprint(strings.Join(extra, "  ")))
		}
		b.WriteByte('\n')
	}
	if len(nets) == 0 {
		b.WriteString(r.dim.Sprint("(none visible)"))
		b.WriteByte('\n')
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	io.WriteString(r.out, b.String()) //nolint:errcheck
}

// ── Trial status ─────────────────────────────────────────────────────

// Trying announces that a trial started.
func (r *Reporter) Trying(t probe.Trial) {
	r.println(fmt.Sprintf("Trying password: %s", t.Candidate))
}

// Outcome prints the status line for a finished trial.
func (r *Reporter) Outcome(o probe.Outcome) {
	switch o.Result {
	case probe.Success:
		r.println(r.ok.Sprintf("Successfully connected to %s with password: %s", o.Target, o.Candidate))
	case probe.Failure:
		r.println(r.fail.Sprintf("Failed to connect with password: %s", o.Candidate))
	default:
		r.println(r.bad.Sprintf("Error trying password %s: %v", o.Candidate, o.Err))
	}
}

// Summary prints the final line of a run.
func (r *Reporter) Summary(rep trial.Report) {
	took := rep.Elapsed.Truncate(time.Millisecond)
	switch rep.State {
	case trial.StateSatisfied:
		r.println(r.bold.Sprintf("Key for %s found after %d attempt(s) in %s.", rep.Target, rep.Submitted, took))
	case trial.StateCancelled:
		r.println(r.warn.Sprintf("Run cancelled after %d attempt(s) in %s.", rep.Submitted, took))
	default:
		msg := fmt.Sprintf("No candidate joined %s: %d tried, %d failed, %d error(s) in %s.",
			rep.Target, rep.Submitted, rep.Count(probe.Failure), rep.Count(probe.Error), took)
		if rep.Submitted > 0 && rep.Count(probe.Error) == rep.Submitted {
			r.println(r.bad.Sprint(msg))
			return
		}
		r.println(r.fail.Sprint(msg))
	}
}

// Notice prints an advisory line that is part of the result, such as
// an operation the platform cannot perform.
func (r *Reporter) Notice(format string, args ...any) {
	r.println(r.warn.Sprintf(format, args...))
}

// Stats prints a metrics snapshot.
func (r *Reporter) Stats(json string) {
	r.println(r.dim.Sprint(json))
}
