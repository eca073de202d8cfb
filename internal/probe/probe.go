package probe

import (
	"context"
	"fmt"
	"time"

	"wifiprobe/config"
	wperrors "wifiprobe/internal/errors"
	"wifiprobe/internal/retry"
	"wifiprobe/internal/wlan"
	"wifiprobe/util"
)

// Prober runs one trial to completion.  Implementations must be safe
// for concurrent use and must return rather than panic.
type Prober interface {
	Attempt(ctx context.Context, t Trial) Outcome
}

// ProberFunc adapts a plain function to [Prober].
type ProberFunc func(ctx context.Context, t Trial) Outcome

// Attempt calls f.
func (f ProberFunc) Attempt(ctx context.Context, t Trial) Outcome { return f(ctx, t) }

// JoinProbe joins the target with one candidate key and verifies the
// association.
//
// Side effects: every attempt saves its own network profile through
// the backend (see wlan.ProfileName), which persists on the host after
// the process exits.  Set Cleanup to delete the profile again after a
// failed attempt.
//
// When the backend is a wlan.ProfileReporter, an association only
// counts as this trial's join if it runs on this trial's profile, so a
// concurrent trial's success is not claimed by a wrong key.
type JoinProbe struct {
	Backend  wlan.Backend
	Verifier Checker

	// Settle is how long to wait for the association after the join
	// command returns.  Polling stops early once joined.
	Settle time.Duration
	// Timeout bounds the whole attempt including every OS command.
	Timeout time.Duration
	Backoff *retry.Backoff
	// Breaker, when set, fails attempts fast after repeated command
	// errors.
	Breaker *retry.Breaker
	Cleanup bool
	Logger  *util.Logger
}

// Attempt runs the trial.  It never panics: a panic in a backend is
// converted into an Error outcome for this candidate.
func (p *JoinProbe) Attempt(ctx context.Context, t Trial) (out Outcome) {
	start := time.Now()
	out = Outcome{Trial: t}
	defer func() {
		if r := recover(); r != nil {
			out.Result = Error
			out.Err = wperrors.WrapProbe("panic", t.Target, t.Index, fmt.Errorf("%v", r))
		}
		out.Elapsed = time.Since(start)
	}()

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	profile := wlan.NewProfile(t.Target, t.Candidate, t.Index)
	err := p.Breaker.Do(func() error {
		if err := p.Backend.SaveProfile(ctx, profile); err != nil {
			return wperrors.WrapProbe("save-profile", t.Target, t.Index, err)
		}
		if err := p.Backend.Connect(ctx, profile); err != nil {
			return wperrors.WrapProbe("connect", t.Target, t.Index, err)
		}
		return nil
	})
	if err != nil {
		if wperrors.Is(err, wperrors.ErrCircuitOpen) {
			err = wperrors.WrapProbe("connect", t.Target, t.Index, err)
		}
		out.Result, out.Err = Error, err
		return out
	}

	joined, err := p.backoff().Poll(ctx, p.settle(), func(attempt int) (bool, error) {
		p.logger().Debug("verify %q candidate #%d (poll %d)", t.Target, t.Index+1, attempt)
		joined, err := p.Verifier.IsJoined(ctx, t.Target)
		if err != nil || !joined {
			return joined, err
		}
		return p.owns(ctx, profile)
	})
	switch {
	case err != nil:
		out.Result, out.Err = Error, wperrors.WrapProbe("verify", t.Target, t.Index, err)
	case joined:
		out.Result = Success
	default:
		out.Result = Failure
		p.cleanup(ctx, t, profile)
	}
	return out
}

// owns reports whether the current association runs on profile.
// Backends that cannot tell count every association as owned.
func (p *JoinProbe) owns(ctx context.Context, profile wlan.Profile) (bool, error) {
	r, ok := p.Backend.(wlan.ProfileReporter)
	if !ok {
		return true, nil
	}
	active, err := r.ActiveProfile(ctx)
	if err != nil {
		return false, &wperrors.VerificationError{Target: profile.SSID, Err: err}
	}
	if active != profile.Name {
		p.logger().Debug("%q is joined through %q, not %q", profile.SSID, active, profile.Name)
		return false, nil
	}
	return true, nil
}

func (p *JoinProbe) cleanup(ctx context.Context, t Trial, profile wlan.Profile) {
	if !p.Cleanup {
		return
	}
	if err := p.Backend.RemoveProfile(ctx, profile); err != nil {
		p.logger().Warn("candidate #%d: could not remove saved profile: %v", t.Index+1, err)
	}
}

func (p *JoinProbe) settle() time.Duration {
	if p.Settle > 0 {
		return p.Settle
	}
	return config.DefaultSettle
}

func (p *JoinProbe) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return config.DefaultAttemptTimeout
}

func (p *JoinProbe) backoff() *retry.Backoff {
	if p.Backoff != nil {
		return p.Backoff
	}
	b := retry.DefaultBackoff()
	b.InitialDelay = config.DefaultPollInterval
	return b
}

func (p *JoinProbe) logger() *util.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return util.NewLogger(0)
}
