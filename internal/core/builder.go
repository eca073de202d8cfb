package core

import (
	"fmt"
	"io"
	"os"

	"wifiprobe/config"
	"wifiprobe/internal/gate"
	"wifiprobe/internal/metrics"
	"wifiprobe/internal/netstat"
	"wifiprobe/internal/report"
	"wifiprobe/internal/wlan"
	"wifiprobe/util"
)

// Env carries the host collaborators a mode runs against.  Zero fields
// are filled from the running system, so tests swap in fakes one field
// at a time.
type Env struct {
	Backend wlan.Backend
	Lister  netstat.Lister
	Stdout  io.Writer
	// Stderr receives the gate prompt.
	Stderr     io.Writer
	GateReader gate.Reader
	Privileged func() bool
}

func (e Env) withDefaults(cfg *config.Config, logger *util.Logger) Env {
	if e.Backend == nil {
		e.Backend = wlan.Default(cfg.Interface, logger)
	}
	if e.Lister == nil {
		e.Lister = netstat.System{}
	}
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.GateReader == nil {
		e.GateReader = gate.TerminalReader(os.Stdin)
	}
	return e
}

// Build constructs the Mode selected by cfg against the running
// system.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	return BuildWith(cfg, logger, Env{})
}

// BuildWith is Build with explicit collaborators.  This is the single
// dispatch point from configuration to behaviour.
func BuildWith(cfg *config.Config, logger *util.Logger, env Env) (Mode, error) {
	env = env.withDefaults(cfg, logger)
	rep := report.New(env.Stdout, report.ColorEnabled(env.Stdout, cfg.NoColor))

	var mode Mode
	switch m := cfg.Mode(); m {
	case config.ModeList:
		mode = &ListMode{Lister: env.Lister, Reporter: rep, Logger: logger}
	case config.ModeScan:
		mode = &ScanMode{Backend: env.Backend, Reporter: rep, Logger: logger}
	case config.ModeTrial:
		mode = buildTrial(cfg, logger, env, rep)
	default:
		return nil, fmt.Errorf("no mode selected (%s)", m)
	}

	if !cfg.Gate {
		return mode, nil
	}
	checker, err := gate.NewHashChecker(cfg.GateHash)
	if err != nil {
		return nil, err
	}
	return &GatedMode{Inner: mode, Checker: checker, Prompt: env.Stderr, Read: env.GateReader}, nil
}

func buildTrial(cfg *config.Config, logger *util.Logger, env Env, rep *report.Reporter) *TrialMode {
	return &TrialMode{
		Backend:          env.Backend,
		Connections:      env.Lister,
		Target:           cfg.Target,
		CandidateFile:    cfg.CandidateFile,
		Workers:          cfg.Workers,
		Serial:           cfg.Serial,
		Settle:           cfg.Settle,
		AttemptTimeout:   cfg.AttemptTimeout,
		Cleanup:          cfg.Cleanup,
		MaxCommandErrors: cfg.MaxCommandErrors,
		Reporter:         rep,
		Metrics:          metrics.New(),
		Stats:            cfg.Stats,
		Logger:           logger,
		Privileged:       env.Privileged,
	}
}
