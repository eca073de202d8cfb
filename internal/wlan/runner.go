package wlan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	wperrors "wifiprobe/internal/errors"
	"wifiprobe/util"
)

const (
	// maxErrOutput bounds how much command output is kept in an error.
	maxErrOutput = 512

	waitDelay = 500 * time.Millisecond
)

// Runner executes one external command and returns its combined
// output.  Tests substitute a scripted Runner.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.  The context bounds the
// process: when it expires the process is killed.
type ExecRunner struct {
	Logger *util.Logger
}

// Run executes name with args.  A non-zero exit is returned as a
// *errors.CommandError; a context expiry is additionally marked with
// errors.ErrTimeout.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Children that inherit the output pipe must not hold Run open
	// past the deadline.
	cmd.WaitDelay = waitDelay
	if r.Logger != nil {
		r.Logger.Debug("exec: %s %s", name, maskArgs(args))
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}

	ce := &wperrors.CommandError{
		Name:     name,
		ExitCode: -1,
		Output:   tail(out.String(), maxErrOutput),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		ce.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		return out.Bytes(), fmt.Errorf("%w: %w", wperrors.ErrTimeout, ce)
	}
	return out.Bytes(), ce
}

// maskArgs renders args for logging with anything that looks like a
// key argument replaced.
func maskArgs(args []string) string {
	masked := make([]string, len(args))
	hideNext := false
	for i, a := range args {
		switch {
		case hideNext:
			masked[i] = "****"
			hideNext = false
		case a == "wifi-sec.psk" || a == "802-11-wireless-security.psk":
			masked[i] = a
			hideNext = true
		case i == 3 && args[0] == "-setairportnetwork":
			masked[i] = "****"
		default:
			masked[i] = a
		}
	}
	return strings.Join(masked, " ")
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}
