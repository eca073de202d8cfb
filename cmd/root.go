// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"wifiprobe/config"
	"wifiprobe/internal/core"
	"wifiprobe/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X wifiprobe/cmd.version=1.1.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected wifiprobe mode.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, core.Env{}, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, env core.Env, stdout, stderr io.Writer) error {
	// Environment first, so flags override it and --help shows the
	// effective defaults.
	cfg := &config.Config{}
	config.LoadFromEnv(cfg)
	cfg.ApplyDefaults()

	fs := flag.NewFlagSet("wifiprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── operation ────────────────────────────────────────────────
	fs.BoolVar(&cfg.List, "list", false, "List network connection details")
	fs.BoolVar(&cfg.Wifi, "wifi", false, "List available Wi-Fi networks")
	fs.StringVar(&cfg.Target, "try-passwords", "", "Try the keys in FILE against network `SSID` (FILE follows SSID)")

	// ── trial engine ─────────────────────────────────────────────
	fs.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Trials run at once")
	fs.BoolVar(&cfg.Serial, "serial", cfg.Serial, "Run one trial at a time (joins never overlap)")
	fs.DurationVar(&cfg.Settle, "settle", cfg.Settle, "How long to wait for the association after a join")
	fs.DurationVar(&cfg.AttemptTimeout, "attempt-timeout", cfg.AttemptTimeout, "Upper bound for one trial, commands included")
	fs.BoolVar(&cfg.Cleanup, "cleanup", cfg.Cleanup, "Delete the saved profile after a failed trial")
	fs.IntVar(&cfg.MaxCommandErrors, "max-command-errors", cfg.MaxCommandErrors, "Fail fast after N consecutive command errors (0 = never)")
	fs.StringVarP(&cfg.Interface, "interface", "i", cfg.Interface, "Wireless device to use (default: any)")

	// ── access gate ──────────────────────────────────────────────
	fs.BoolVar(&cfg.Gate, "gate", false, "Ask for the access passphrase (hash in WIFIPROBE_GATE_HASH)")

	// ── output ───────────────────────────────────────────────────
	envVerbose := cfg.Verbose // CountVarP zeroes its target
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable coloured output")
	fs.BoolVar(&cfg.Stats, "stats", false, "Print trial metrics as JSON after the run")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "wifiprobe %s\n", version)
		return nil
	}

	if cfg.Verbose == 0 {
		cfg.Verbose = envVerbose
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Mode() == config.ModeHelp {
		printUsage(stderr, fs)
		return nil
	}

	if cfg.DryRun {
		fmt.Fprintf(stdout, "configuration OK: mode=%s workers=%d settle=%s attempt-timeout=%s\n",
			cfg.Mode(), cfg.EffectiveWorkers(), cfg.Settle, cfg.AttemptTimeout)
		return nil
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	if env.Stdout == nil {
		env.Stdout = stdout
	}
	if env.Stderr == nil {
		env.Stderr = stderr
	}
	mode, err := core.BuildWith(cfg, logger, env)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional takes the FILE operand of --try-passwords.  No other
// mode accepts operands.
func parsePositional(cfg *config.Config, remaining []string) error {
	if cfg.Target == "" {
		if len(remaining) > 0 {
			return fmt.Errorf("unexpected argument %q (use --help for usage)", remaining[0])
		}
		return nil
	}

	switch len(remaining) {
	case 0: // reported by Validate with a usage hint
	case 1:
		cfg.CandidateFile = remaining[0]
	default:
		return fmt.Errorf("too many arguments for --try-passwords: %q", remaining[1:])
	}
	return nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `wifiprobe – Wi-Fi credential audit tool v%s

Checks a list of candidate keys against a wireless network you own or
are authorised to test, and lists local connections and visible
networks.  Each trial saves a network profile on this host.

Usage:
  wifiprobe --list                           List network connections
  wifiprobe --wifi                           List visible Wi-Fi networks
  wifiprobe --try-passwords <SSID> <FILE>    Try the keys in FILE ("-" = stdin)

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  wifiprobe --list
  wifiprobe --try-passwords HomeNet keys.txt
  wifiprobe --serial --cleanup --try-passwords HomeNet keys.txt
  wifiprobe -j 2 --settle 3s --stats --try-passwords Lab-AP keys.txt
  WIFIPROBE_GATE_HASH='$2a$10$...' wifiprobe --gate --list
`)
}
