package core

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"wifiprobe/config"
	"wifiprobe/internal/candidates"
	wperrors "wifiprobe/internal/errors"
	"wifiprobe/internal/metrics"
	"wifiprobe/internal/netstat"
	"wifiprobe/internal/probe"
	"wifiprobe/internal/report"
	"wifiprobe/internal/retry"
	"wifiprobe/internal/trial"
	"wifiprobe/internal/wlan"
	"wifiprobe/util"
)

// TrialMode tries every candidate in a file against one target and
// reports the first key that joins.
type TrialMode struct {
	Backend wlan.Backend
	// Verifier defaults to the backend's association state plus the
	// socket table from Connections.
	Verifier    probe.Checker
	Connections netstat.Lister

	Target        string
	CandidateFile string

	Workers          int
	Serial           bool
	Settle           time.Duration
	AttemptTimeout   time.Duration
	Cleanup          bool
	MaxCommandErrors int

	Reporter *report.Reporter
	Metrics  *metrics.Collector
	Stats    bool
	Logger   *util.Logger

	// Privileged reports whether the process may change network
	// configuration.  Nil means wlan.Privileged.
	Privileged func() bool
}

// Run loads the candidates, runs the engine with live status lines and
// prints the summary.  Setup problems (unreadable file, no backend for
// this OS) are returned before any join is attempted.  A run that ends
// without a join is not an error.
func (m *TrialMode) Run(ctx context.Context) error {
	if u, ok := m.Backend.(wlan.Unsupported); ok {
		return wperrors.Unsupported("try-passwords", u.OS)
	}

	list, err := candidates.Load(m.CandidateFile)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return &wperrors.ConfigError{
			Field:   "try-passwords",
			Value:   m.CandidateFile,
			Message: "candidate file has no usable lines",
			Err:     wperrors.ErrNoCandidates,
		}
	}

	if !m.privileged() {
		m.Reporter.Notice("Not running as root; %s may refuse to change network settings.", m.Backend.Name())
	}

	eng := &trial.Engine{
		Prober:    m.prober(),
		Workers:   m.Workers,
		Serial:    m.Serial,
		Logger:    m.Logger,
		Metrics:   m.Metrics,
		OnStart:   m.Reporter.Trying,
		OnOutcome: m.Reporter.Outcome,
	}
	if eng.Limit() > 1 {
		m.Logger.Verbose("%d joins may run at once against one interface; use --serial if results look inconsistent", eng.Limit())
	}

	_, _, rep := eng.Run(ctx, m.Target, list)
	m.Reporter.Summary(rep)
	if m.Stats {
		m.Reporter.Stats(m.Metrics.JSON())
	}

	if rep.State == trial.StateCancelled {
		return fmt.Errorf("run %s cancelled: %w", rep.RunID, ctx.Err())
	}
	return nil
}

func (m *TrialMode) prober() *probe.JoinProbe {
	verifier := m.Verifier
	if verifier == nil {
		verifier = &probe.Verifier{Association: m.Backend, Connections: m.Connections}
	}

	var breaker *retry.Breaker
	if m.MaxCommandErrors > 0 {
		breaker = retry.NewBreaker(retry.BreakerConfig{
			Threshold: m.MaxCommandErrors,
			Cooldown:  config.DefaultBreakerReset,
			OnStateChange: func(from, to retry.State) {
				m.Logger.Warn("command breaker %s -> %s", from, to)
			},
		})
	}

	return &probe.JoinProbe{
		Backend:  m.Backend,
		Verifier: verifier,
		Settle:   m.Settle,
		Timeout:  m.AttemptTimeout,
		Breaker:  breaker,
		Cleanup:  m.Cleanup,
		Logger:   m.Logger,
	}
}

func (m *TrialMode) privileged() bool {
	if m.Privileged != nil {
		return m.Privileged()
	}
	return runtime.GOOS != "linux" || wlan.Privileged()
}
